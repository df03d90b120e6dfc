package impact

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Certificates are valid for five years from issuance.
const certificateValidity = 5

// Issuer derives verifiable offset certificates from purchase totals.
// Certificates are immutable once issued; corrections require issuing a
// new certificate.
type Issuer struct {
	cfg EngineConfig
	now func() time.Time
}

// NewIssuer creates a new certificate issuer
func NewIssuer(cfg EngineConfig) *Issuer {
	return &Issuer{cfg: cfg, now: time.Now}
}

// Issue builds a certificate quantifying the credits in the given purchases,
// optionally restricted to a project-id filter and time window. A zero total
// yields (nil, nil): nothing to certify is a valid outcome, not an error.
func (i *Issuer) Issue(buyer *Buyer, req *IssueCertificateRequest, purchases []Purchase) *ImpactCertificate {
	filtered := filterPurchases(purchases, req.ProjectIDs, req.Period)

	var quantification float64
	projectSet := make(map[uuid.UUID]bool)
	for _, p := range filtered {
		quantification += p.CreditAmount
		projectSet[p.ProjectID] = true
	}

	if quantification == 0 {
		return nil
	}

	certType := req.Type
	if certType == "" {
		certType = CertificateTypeOffset
	}

	projectIDs := make([]uuid.UUID, 0, len(projectSet))
	for id := range projectSet {
		projectIDs = append(projectIDs, id)
	}
	sortUUIDs(projectIDs)

	issueDate := i.now().UTC()
	cert := &ImpactCertificate{
		ID:             uuid.New(),
		BuyerID:        req.BuyerID,
		Type:           certType,
		Quantification: quantification,
		Unit:           "tCO2e",
		Issuer:         i.cfg.Issuer,
		Verifier:       i.cfg.Verifier,
		SerialNumber:   i.serialNumber(req.BuyerID, issueDate),
		IssueDate:      issueDate,
		ValidUntil:     issueDate.AddDate(certificateValidity, 0, 0),
		ProjectIDs:     projectIDs,
	}

	actor := i.cfg.Issuer
	detail := fmt.Sprintf("Certified %.2f %s across %d project(s)", quantification, cert.Unit, len(projectIDs))
	if buyer != nil {
		detail = fmt.Sprintf("%s for %s", detail, buyer.Name)
	}
	cert.AuditTrail = []AuditEntry{{
		Action:    "Certificate Issued",
		Actor:     actor,
		Timestamp: issueDate,
		Detail:    detail,
	}}

	return cert
}

// serialNumber composes a timestamp, a buyer-id suffix, and a random
// fragment. The fragment keeps serials collision-free under concurrent
// issuance for the same buyer within the same second.
func (i *Issuer) serialNumber(buyerID uuid.UUID, issueDate time.Time) string {
	buyerHex := strings.ReplaceAll(buyerID.String(), "-", "")
	suffix := strings.ToUpper(buyerHex[len(buyerHex)-8:])
	fragment := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("CRT-%s-%s-%s", issueDate.Format("20060102150405"), suffix, fragment)
}

// filterPurchases applies the optional project-id filter and time window
func filterPurchases(purchases []Purchase, projectIDs []uuid.UUID, period *ReportPeriod) []Purchase {
	allowed := make(map[uuid.UUID]bool, len(projectIDs))
	for _, id := range projectIDs {
		allowed[id] = true
	}

	var filtered []Purchase
	for _, p := range purchases {
		if len(allowed) > 0 && !allowed[p.ProjectID] {
			continue
		}
		if period != nil && (p.CreatedAt.Before(period.Start) || p.CreatedAt.After(period.End)) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

func sortUUIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(a, b int) bool {
		return ids[a].String() < ids[b].String()
	})
}
