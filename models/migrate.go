package models

// All lists every persisted model in dependency order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Account{},
		&RepairShop{},
		&Analytics{},
		&Facility{},
		&Schedule{},
		&Equipment{},
		&Certification{},
		&Employee{},
		&TechnicianAvailability{},
		&Customer{},
		&Vehicle{},
		&ServiceType{},
		&Appointment{},
		&Review{},
		&Notification{},
		&Message{},
		&EventLog{},
		&Payment{},
	}
}
