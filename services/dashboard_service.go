package services

import (
	"context"

	"github.com/yeremiapane/auto-service/models"
	"gorm.io/gorm"
)

type Landing struct {
	Shop             *models.RepairShop   `json:"repair_shop"`
	Facilities       []models.Facility    `json:"facilities"`
	FeaturedServices []models.ServiceType `json:"featured_services"`
	FeaturedReviews  []models.Review      `json:"featured_reviews"`
}

type TechnicianDashboard struct {
	Appointments      []models.Appointment `json:"appointments"`
	TodayCount        int64                `json:"today_appointments_count"`
	CompletedToday    int64                `json:"completed_today"`
	PendingCount      int64                `json:"pending_count"`
	UpcomingCount     int64                `json:"upcoming_count"`
	UnreadNotifyCount int64                `json:"unread_notifications_count"`
}

type CustomerDashboard struct {
	Appointments      []models.Appointment `json:"appointments"`
	Vehicles          []models.Vehicle     `json:"vehicles"`
	UnreadNotifyCount int64                `json:"unread_notifications_count"`
}

type ShopDashboard struct {
	Shop              *models.RepairShop `json:"repair_shop"`
	TodayCount        int64              `json:"today_appointments_count"`
	InProgressCount   int64              `json:"in_progress_count"`
	UnassignedCount   int64              `json:"unassigned_count"`
	PendingPayments   int64              `json:"pending_payments"`
	ActiveFacilities  int64              `json:"active_facilities"`
	UnreadNotifyCount int64              `json:"unread_notifications_count"`
}

type DashboardService struct {
	DB            *gorm.DB
	Shops         *ShopService
	Facilities    *FacilityService
	Reviews       *ReviewService
	Appointments  *AppointmentService
	Vehicles      *VehicleService
	Notifications *NotificationService
}

// LandingPage gathers the public front page: three facilities, six services and the
// three newest reviews rated four or better.
func (s *DashboardService) LandingPage(ctx context.Context) (*Landing, error) {
	landing := &Landing{}
	if shop, err := s.Shops.GetShop(ctx); err == nil {
		landing.Shop = shop
	}

	db := s.DB.WithContext(ctx)
	if err := db.Where("is_active = ?", true).Order("id ASC").Limit(3).Find(&landing.Facilities).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id ASC").Limit(6).Find(&landing.FeaturedServices).Error; err != nil {
		return nil, err
	}
	reviews, err := s.Reviews.FeaturedReviews(ctx, 4, 3)
	if err != nil {
		return nil, err
	}
	landing.FeaturedReviews = reviews
	return landing, nil
}

// ForAccount builds the dashboard matching the caller's role.
func (s *DashboardService) ForAccount(ctx context.Context, accountID uint, role models.Role) (interface{}, error) {
	unread, err := s.Notifications.UnreadCount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	switch {
	case role == models.RoleCustomer:
		return s.customer(ctx, accountID, unread)
	case role == models.RoleTechnician:
		return s.technician(ctx, accountID, unread)
	default:
		return s.shopWide(ctx, unread)
	}
}

func (s *DashboardService) customer(ctx context.Context, accountID uint, unread int64) (*CustomerDashboard, error) {
	appointments, err := s.Appointments.ListAppointments(ctx, accountID, models.RoleCustomer, AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	vehicles, err := s.Vehicles.ListVehicles(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &CustomerDashboard{Appointments: appointments, Vehicles: vehicles, UnreadNotifyCount: unread}, nil
}

func (s *DashboardService) technician(ctx context.Context, accountID uint, unread int64) (*TechnicianDashboard, error) {
	employee, err := employeeByAccount(s.DB.WithContext(ctx), accountID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.Appointments.ListAppointments(ctx, accountID, models.RoleTechnician, AppointmentFilter{})
	if err != nil {
		return nil, err
	}

	dayStart := today()
	dayEnd := dayStart.AddDate(0, 0, 1)
	mine := func() *gorm.DB {
		return s.DB.WithContext(ctx).Model(&models.Appointment{}).Where("technician_id = ?", employee.ID)
	}

	dash := &TechnicianDashboard{Appointments: appointments, UnreadNotifyCount: unread}
	if err := mine().Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayEnd).Count(&dash.TodayCount).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("scheduled_at >= ? AND scheduled_at < ? AND status = ?", dayStart, dayEnd, models.StatusCompleted).
		Count(&dash.CompletedToday).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("status = ?", models.StatusScheduled).Count(&dash.PendingCount).Error; err != nil {
		return nil, err
	}
	if err := mine().Where("scheduled_at >= ?", dayEnd).Count(&dash.UpcomingCount).Error; err != nil {
		return nil, err
	}
	return dash, nil
}

func (s *DashboardService) shopWide(ctx context.Context, unread int64) (*ShopDashboard, error) {
	dash := &ShopDashboard{UnreadNotifyCount: unread}
	if shop, err := s.Shops.GetShop(ctx); err == nil {
		dash.Shop = shop
	}

	db := s.DB.WithContext(ctx)
	dayStart := today()
	counts := []struct {
		query *gorm.DB
		into  *int64
	}{
		{db.Model(&models.Appointment{}).Where("scheduled_at >= ? AND scheduled_at < ?", dayStart, dayStart.AddDate(0, 0, 1)), &dash.TodayCount},
		{db.Model(&models.Appointment{}).Where("status = ?", models.StatusInProgress), &dash.InProgressCount},
		{db.Model(&models.Appointment{}).Where("status = ? AND technician_id IS NULL", models.StatusScheduled), &dash.UnassignedCount},
		{db.Model(&models.Payment{}).Where("status = ?", models.PaymentPending), &dash.PendingPayments},
		{db.Model(&models.Facility{}).Where("is_active = ?", true), &dash.ActiveFacilities},
	}
	for _, c := range counts {
		if err := c.query.Count(c.into).Error; err != nil {
			return nil, err
		}
	}
	return dash, nil
}
