package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AnalyticsReport is the decoded form of the Analytics row.
type AnalyticsReport struct {
	models.Analytics
	Facilities  []models.FacilityUtilization   `json:"facilities"`
	Technicians []models.TechnicianPerformance `json:"technicians"`
	Services    []models.ServiceRevenue        `json:"services"`
}

type AnalyticsService struct {
	DB    *gorm.DB
	Shops *ShopService
}

func NewAnalyticsService(db *gorm.DB, shops *ShopService) *AnalyticsService {
	return &AnalyticsService{DB: db, Shops: shops}
}

// Recompute rebuilds the whole snapshot from the booking tables. Concurrent runs are
// not coordinated; the last writer wins.
func (s *AnalyticsService) Recompute(ctx context.Context) (*AnalyticsReport, error) {
	shop, err := s.Shops.GetShop(ctx)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	report := AnalyticsReport{}
	report.RepairShopID = shop.ID

	if err := db.Model(&models.Customer{}).Count(&report.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Vehicle{}).Count(&report.TotalVehicles).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Appointment{}).Count(&report.TotalAppointments).Error; err != nil {
		return nil, err
	}

	revenue, err := scanFloat(db.Model(&models.Appointment{}).
		Select("SUM(final_cost)").
		Where("status = ?", models.StatusCompleted))
	if err != nil {
		return nil, err
	}
	report.TotalRevenue = revenue

	satisfaction, err := scanFloat(db.Model(&models.Review{}).Select("AVG(rating)"))
	if err != nil {
		return nil, err
	}
	report.CustomerSatisfaction = satisfaction

	if report.Facilities, err = s.facilityUtilization(db); err != nil {
		return nil, err
	}
	if report.Technicians, err = s.technicianPerformance(db); err != nil {
		return nil, err
	}
	if report.Services, err = s.serviceRevenue(db); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report.LastUpdated = &now
	if err := s.store(db, &report); err != nil {
		return nil, err
	}
	utils.InfoLogger.Printf("Analytics recomputed: %d appointments, revenue %s",
		report.TotalAppointments, utils.FormatCurrency(report.TotalRevenue))
	return &report, nil
}

// scanFloat reads a single aggregate; NULL (no rows) reads as 0.
func scanFloat(query *gorm.DB) (float64, error) {
	var value sql.NullFloat64
	if err := query.Row().Scan(&value); err != nil {
		return 0, err
	}
	if !value.Valid {
		return 0, nil
	}
	return value.Float64, nil
}

func (s *AnalyticsService) facilityUtilization(db *gorm.DB) ([]models.FacilityUtilization, error) {
	var facilities []models.Facility
	if err := db.Order("id ASC").Find(&facilities).Error; err != nil {
		return nil, err
	}

	result := make([]models.FacilityUtilization, 0, len(facilities))
	for _, f := range facilities {
		var completed int64
		err := db.Model(&models.Appointment{}).
			Joins("JOIN service_types ON service_types.id = appointments.service_type_id").
			Where("service_types.facility_id = ? AND appointments.status = ?", f.ID, models.StatusCompleted).
			Count(&completed).Error
		if err != nil {
			return nil, err
		}
		rate := 0.0
		if f.Capacity > 0 {
			rate = float64(completed) / float64(f.Capacity)
		}
		result = append(result, models.FacilityUtilization{
			FacilityID:      f.ID,
			Name:            f.Name,
			Capacity:        f.Capacity,
			Completed:       completed,
			UtilizationRate: rate,
		})
	}
	return result, nil
}

func (s *AnalyticsService) technicianPerformance(db *gorm.DB) ([]models.TechnicianPerformance, error) {
	var technicians []models.Employee
	err := db.Joins("JOIN accounts ON accounts.id = employees.account_id").
		Where("accounts.role = ?", models.RoleTechnician).
		Preload("Account.User").
		Order("employees.id ASC").
		Find(&technicians).Error
	if err != nil {
		return nil, err
	}

	result := make([]models.TechnicianPerformance, 0, len(technicians))
	for _, t := range technicians {
		var assigned, completed int64
		if err := db.Model(&models.Appointment{}).Where("technician_id = ?", t.ID).Count(&assigned).Error; err != nil {
			return nil, err
		}
		err := db.Model(&models.Appointment{}).
			Where("technician_id = ? AND status = ?", t.ID, models.StatusCompleted).
			Count(&completed).Error
		if err != nil {
			return nil, err
		}
		rating, err := scanFloat(db.Model(&models.Review{}).
			Select("AVG(reviews.technician_rating)").
			Joins("JOIN appointments ON appointments.id = reviews.appointment_id").
			Where("appointments.technician_id = ? AND reviews.technician_rating IS NOT NULL", t.ID))
		if err != nil {
			return nil, err
		}

		rate := 0.0
		if assigned > 0 {
			rate = float64(completed) / float64(assigned)
		}
		result = append(result, models.TechnicianPerformance{
			EmployeeID:     t.ID,
			Name:           t.Account.User.FullName(),
			Assigned:       assigned,
			Completed:      completed,
			AverageRating:  rating,
			CompletionRate: rate,
		})
	}
	return result, nil
}

func (s *AnalyticsService) serviceRevenue(db *gorm.DB) ([]models.ServiceRevenue, error) {
	var services []models.ServiceType
	if err := db.Order("id ASC").Find(&services).Error; err != nil {
		return nil, err
	}

	result := make([]models.ServiceRevenue, 0, len(services))
	for _, st := range services {
		var completed int64
		completedQuery := db.Model(&models.Appointment{}).
			Where("service_type_id = ? AND status = ?", st.ID, models.StatusCompleted)
		if err := completedQuery.Count(&completed).Error; err != nil {
			return nil, err
		}
		revenue, err := scanFloat(db.Model(&models.Appointment{}).
			Select("SUM(final_cost)").
			Where("service_type_id = ? AND status = ?", st.ID, models.StatusCompleted))
		if err != nil {
			return nil, err
		}
		result = append(result, models.ServiceRevenue{
			ServiceTypeID: st.ID,
			Name:          st.Name,
			Completed:     completed,
			Revenue:       revenue,
		})
	}
	return result, nil
}

func (s *AnalyticsService) store(db *gorm.DB, report *AnalyticsReport) error {
	facilities, err := json.Marshal(report.Facilities)
	if err != nil {
		return err
	}
	technicians, err := json.Marshal(report.Technicians)
	if err != nil {
		return err
	}
	services, err := json.Marshal(report.Services)
	if err != nil {
		return err
	}
	report.FacilityUtilization = datatypes.JSON(facilities)
	report.TechnicianPerformance = datatypes.JSON(technicians)
	report.ServiceRevenue = datatypes.JSON(services)

	return db.Transaction(func(tx *gorm.DB) error {
		var row models.Analytics
		err := tx.Where("repair_shop_id = ?", report.RepairShopID).
			Attrs(models.Analytics{RepairShopID: report.RepairShopID}).
			FirstOrCreate(&row).Error
		if err != nil {
			return err
		}
		err = tx.Model(&row).Updates(map[string]interface{}{
			"total_customers":        report.TotalCustomers,
			"total_vehicles":         report.TotalVehicles,
			"total_appointments":     report.TotalAppointments,
			"total_revenue":          report.TotalRevenue,
			"customer_satisfaction":  report.CustomerSatisfaction,
			"facility_utilization":   report.FacilityUtilization,
			"technician_performance": report.TechnicianPerformance,
			"service_revenue":        report.ServiceRevenue,
			"last_updated":           report.LastUpdated,
		}).Error
		if err != nil {
			return err
		}
		report.ID = row.ID
		report.CreatedAt = row.CreatedAt
		return nil
	})
}

// Get returns the stored snapshot without recomputing it.
func (s *AnalyticsService) Get(ctx context.Context) (*AnalyticsReport, error) {
	shop, err := s.Shops.GetShop(ctx)
	if err != nil {
		return nil, err
	}
	var row models.Analytics
	if err := s.DB.WithContext(ctx).Where("repair_shop_id = ?", shop.ID).First(&row).Error; err != nil {
		return nil, notFound(err, "analytics")
	}

	report := AnalyticsReport{Analytics: row}
	if err := decodeBlob(row.FacilityUtilization, &report.Facilities); err != nil {
		return nil, err
	}
	if err := decodeBlob(row.TechnicianPerformance, &report.Technicians); err != nil {
		return nil, err
	}
	if err := decodeBlob(row.ServiceRevenue, &report.Services); err != nil {
		return nil, err
	}
	return &report, nil
}

func decodeBlob(raw datatypes.JSON, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// ExportPDF writes the stored snapshot as a one-page report.
func (s *AnalyticsService) ExportPDF(ctx context.Context, w io.Writer) error {
	report, err := s.Get(ctx)
	if err != nil {
		return err
	}
	shop, err := s.Shops.GetShop(ctx)
	if err != nil {
		return err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(shop.Name+" analytics", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, shop.Name+" - Analytics")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	updated := "never"
	if report.LastUpdated != nil {
		updated = report.LastUpdated.Format("2006-01-02 15:04 MST")
	}
	pdf.Cell(0, 6, "Last updated: "+updated)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	summary := [][2]string{
		{"Customers", fmt.Sprintf("%d", report.TotalCustomers)},
		{"Vehicles", fmt.Sprintf("%d", report.TotalVehicles)},
		{"Appointments", fmt.Sprintf("%d", report.TotalAppointments)},
		{"Revenue", utils.FormatCurrency(report.TotalRevenue)},
		{"Customer satisfaction", fmt.Sprintf("%.2f / 5", report.CustomerSatisfaction)},
	}
	for _, row := range summary {
		pdf.CellFormat(70, 7, row[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 7, row[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	table(pdf, "Facility utilization",
		[]string{"Facility", "Capacity", "Completed", "Rate"},
		[]float64{80, 30, 30, 30},
		func(add func(...string)) {
			for _, f := range report.Facilities {
				add(f.Name, fmt.Sprintf("%d", f.Capacity), fmt.Sprintf("%d", f.Completed), fmt.Sprintf("%.2f", f.UtilizationRate))
			}
		})
	table(pdf, "Technician performance",
		[]string{"Technician", "Assigned", "Completed", "Rating", "Completion"},
		[]float64{70, 25, 25, 25, 25},
		func(add func(...string)) {
			for _, t := range report.Technicians {
				add(t.Name, fmt.Sprintf("%d", t.Assigned), fmt.Sprintf("%d", t.Completed),
					fmt.Sprintf("%.2f", t.AverageRating), fmt.Sprintf("%.0f%%", t.CompletionRate*100))
			}
		})
	table(pdf, "Service revenue",
		[]string{"Service", "Completed", "Revenue"},
		[]float64{90, 30, 50},
		func(add func(...string)) {
			for _, r := range report.Services {
				add(r.Name, fmt.Sprintf("%d", r.Completed), utils.FormatCurrency(r.Revenue))
			}
		})

	return pdf.Output(w)
}

func table(pdf *fpdf.Fpdf, title string, header []string, widths []float64, rows func(add func(...string))) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	rows(func(cols ...string) {
		for i, col := range cols {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	})
	pdf.Ln(5)
}
