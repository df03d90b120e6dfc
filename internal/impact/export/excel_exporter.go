package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"carbondesk/buyer-portal/buyer-portal-backend/internal/impact"
)

const (
	overviewSheet    = "Overview"
	typeSheet        = "By Project Type"
	geographySheet   = "By Geography"
	projectsSheet    = "Projects"
	comparisonsSheet = "Benchmarks"
)

// PortfolioWorkbook renders a report as a multi-sheet xlsx workbook
func PortfolioWorkbook(report *impact.BuyerImpactReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"226644"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	f.SetSheetName("Sheet1", overviewSheet)
	if err := writeOverviewSheet(f, headerStyle, report); err != nil {
		return nil, err
	}
	if err := writeTypeSheet(f, headerStyle, report); err != nil {
		return nil, err
	}
	if err := writeGeographySheet(f, headerStyle, report); err != nil {
		return nil, err
	}
	if err := writeProjectsSheet(f, headerStyle, report); err != nil {
		return nil, err
	}
	if err := writeComparisonsSheet(f, headerStyle, report); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeOverviewSheet(f *excelize.File, headerStyle int, report *impact.BuyerImpactReport) error {
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Buyer", report.BuyerName},
		{"Report Type", string(report.ReportType)},
		{"Generated At", report.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Status", string(report.Status)},
		{"Total Credits Owned", report.Portfolio.TotalCreditsOwned},
		{"Total Investment", report.Portfolio.TotalInvestment},
		{"Active Projects", report.Portfolio.ActiveProjects},
		{"Completed Projects", report.Portfolio.CompletedProjects},
		{"Diversification Score", report.Portfolio.Risk.DiversificationScore},
		{"Overall Risk", string(report.Portfolio.Risk.OverallRisk)},
		{"Total Carbon Offset (tCO2e)", report.TotalImpact.TotalCarbonOffset},
		{"Trees Equivalent", report.TotalImpact.Equivalences.TreesEquivalent},
		{"Cars Off Road", report.TotalImpact.Equivalences.CarsOffRoad},
		{"Homes Powered", report.TotalImpact.Equivalences.HomesPowered},
		{"ESG Score", report.Sustainability.ESGScore},
	}

	if err := writeRows(f, overviewSheet, rows); err != nil {
		return err
	}
	f.SetCellStyle(overviewSheet, "A1", "B1", headerStyle)
	f.SetColWidth(overviewSheet, "A", "A", 28)
	f.SetColWidth(overviewSheet, "B", "B", 24)
	return nil
}

func writeTypeSheet(f *excelize.File, headerStyle int, report *impact.BuyerImpactReport) error {
	if _, err := f.NewSheet(typeSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", typeSheet, err)
	}

	rows := [][]interface{}{
		{"Project Type", "Credits Owned", "Investment", "Projects", "Share %"},
	}
	for _, b := range report.Portfolio.ByType {
		rows = append(rows, []interface{}{
			string(b.ProjectType), b.CreditsOwned, b.Investment, b.ProjectCount, b.Percentage,
		})
	}

	if err := writeRows(f, typeSheet, rows); err != nil {
		return err
	}
	f.SetCellStyle(typeSheet, "A1", "E1", headerStyle)
	f.SetColWidth(typeSheet, "A", "E", 18)
	return nil
}

func writeGeographySheet(f *excelize.File, headerStyle int, report *impact.BuyerImpactReport) error {
	if _, err := f.NewSheet(geographySheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", geographySheet, err)
	}

	rows := [][]interface{}{
		{"Country", "Region", "Credits Owned", "Investment", "Projects", "Share %"},
	}
	for _, b := range report.Portfolio.ByGeography {
		rows = append(rows, []interface{}{
			b.Country, b.Region, b.CreditsOwned, b.Investment, b.ProjectCount, b.Percentage,
		})
	}

	if err := writeRows(f, geographySheet, rows); err != nil {
		return err
	}
	f.SetCellStyle(geographySheet, "A1", "F1", headerStyle)
	f.SetColWidth(geographySheet, "A", "F", 18)
	return nil
}

func writeProjectsSheet(f *excelize.File, headerStyle int, report *impact.BuyerImpactReport) error {
	if _, err := f.NewSheet(projectsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", projectsSheet, err)
	}

	rows := [][]interface{}{
		{"Project", "Type", "Status", "Credits Owned", "Investment", "Carbon Impact (tCO2e)", "Progress %", "Country"},
	}
	for _, s := range report.ProjectSummaries {
		rows = append(rows, []interface{}{
			s.ProjectName,
			string(s.ProjectType),
			string(s.Status),
			s.CreditsOwned,
			s.Financials.TotalInvestment,
			s.Impact.CarbonImpactToDate,
			s.Progress.Percentage,
			s.Location.Country,
		})
	}

	if err := writeRows(f, projectsSheet, rows); err != nil {
		return err
	}
	f.SetCellStyle(projectsSheet, "A1", "H1", headerStyle)
	f.SetColWidth(projectsSheet, "A", "A", 30)
	f.SetColWidth(projectsSheet, "B", "H", 18)
	return nil
}

func writeComparisonsSheet(f *excelize.File, headerStyle int, report *impact.BuyerImpactReport) error {
	if _, err := f.NewSheet(comparisonsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", comparisonsSheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Your Value", "Industry Benchmark", "Status", "Unit"},
	}
	for _, cmp := range report.Comparisons {
		rows = append(rows, []interface{}{
			cmp.Metric, cmp.BuyerValue, cmp.BenchmarkValue, string(cmp.Status), cmp.Unit,
		})
	}

	if err := writeRows(f, comparisonsSheet, rows); err != nil {
		return err
	}
	f.SetCellStyle(comparisonsSheet, "A1", "E1", headerStyle)
	f.SetColWidth(comparisonsSheet, "A", "E", 22)
	return nil
}

// writeRows writes rows starting at A1 using SetSheetRow per row
func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
