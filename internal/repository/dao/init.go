package dao

import "gorm.io/gorm"

func InitTables(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Organization{},
		&Municipality{},
		&Venue{},
		&Institution{},
		&Activity{},
		&Exhibition{},
		&VenueRequest{},
		&Participation{},
		&Booth{},
		&ExhibitionFinancial{},
		&StudentRegistration{},
		&ExhibitionFeedback{},
	)
}
