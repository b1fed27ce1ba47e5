package db

// Models lists every persisted type in dependency order for schema migration.
func Models() []interface{} {
	return []interface{}{
		&ParkingCategory{},
		&SpecialPrice{},
		&MaintenanceWindow{},
		&AddonService{},
		&PromoCode{},
		&Reservation{},
		&VIPProfile{},
		&StaffAccount{},
	}
}
