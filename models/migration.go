package models

import "gorm.io/gorm"

// MigrateTable creates or updates every table the service owns. Called
// once at startup and by the test harness against sqlite.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Organization{},
		&OrgMembership{},
		&PartType{},
		&PartSubtype{},
		&ProductType{},
		&ProductSubtype{},
		&PartStatusLabel{},
		&ProductStatusLabel{},
		&Platform{},
		&Part{},
		&Product{},
		&RecipeLine{},
		&PartTransaction{},
		&ProductTransaction{},
		&Order{},
		&OrderLine{},
	)
}
