package models

import "github.com/google/uuid"

// assignID fills a missing primary key so inserts behave the same on
// postgres (gen_random_uuid default) and sqlite (no uuid generator).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
