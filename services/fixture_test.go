package services

import (
	"sync"
	"testing"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/testutils"
	"gorm.io/gorm"
)

type pushed struct {
	accountID uint
	event     string
	data      interface{}
}

// recordingPusher stands in for the websocket hub.
type recordingPusher struct {
	mu         sync.Mutex
	events     []pushed
	broadcasts []string
}

func (p *recordingPusher) BroadcastToRoles(event string, data interface{}, roles ...models.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, event)
}

func (p *recordingPusher) PushToAccount(accountID uint, event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, pushed{accountID: accountID, event: event, data: data})
}

func (p *recordingPusher) forAccount(accountID uint) []pushed {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []pushed
	for _, e := range p.events {
		if e.accountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db         *gorm.DB
	pusher     *recordingPusher
	shop       models.RepairShop
	facility   models.Facility
	service    models.ServiceType
	customer   testutils.Seeded
	technician testutils.Seeded
	secretary  testutils.Seeded
	vehicle    models.Vehicle
}

// newFixture seeds a shop with one facility, one oil change service (6 month
// interval), a customer with a vehicle, a technician and a secretary.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutils.NewTestDB(t)
	f := &fixture{db: db, pusher: &recordingPusher{}}
	f.shop = testutils.CreateShop(t, db)
	f.facility = testutils.CreateFacility(t, db, f.shop.ID, "Maintenance Bay")
	f.service = testutils.CreateServiceType(t, db, f.facility.ID, "Oil Change", 150000, testutils.IntPtr(6))
	f.customer = testutils.CreateAccount(t, db, models.RoleCustomer, "budi")
	f.technician = testutils.CreateAccount(t, db, models.RoleTechnician, "tono")
	f.secretary = testutils.CreateAccount(t, db, models.RoleSecretary, "sari")
	f.vehicle = testutils.CreateVehicle(t, db, f.customer.CustomerID, "1HGCM82633A004352")
	return f
}

func (f *fixture) appointments() *AppointmentService {
	return NewAppointmentService(f.db, f.pusher)
}

func (f *fixture) notificationsFor(t *testing.T, accountID uint) []models.Notification {
	t.Helper()
	var out []models.Notification
	if err := f.db.Where("account_id = ?", accountID).Order("id ASC").Find(&out).Error; err != nil {
		t.Fatalf("load notifications: %v", err)
	}
	return out
}
