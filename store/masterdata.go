package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Farm is a pickup site. Coordinates are optional; a farm without them still
// appears on the board, just without an origin marker.
type Farm struct {
	ID        int64     `json:"id"`
	Plant     string    `json:"plant"`
	Branch    string    `json:"branch"`
	House     string    `json:"house"`
	Name      string    `json:"name"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Factory is a receiving site, keyed by its site code in the plan feed.
type Factory struct {
	ID        int64     `json:"id"`
	Site      string    `json:"site"`
	Name      string    `json:"name"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Truck struct {
	ID        int64     `json:"id"`
	Plate     string    `json:"plate"`
	CreatedAt time.Time `json:"created_at"`
}

func (db *DB) CreateFarm(f *Farm) error {
	var lat, lng any
	if f.Lat != nil {
		lat = *f.Lat
	}
	if f.Lng != nil {
		lng = *f.Lng
	}
	id, err := db.insertID(db.Q(`INSERT INTO farms (plant, branch, house, name, lat, lng) VALUES (?, ?, ?, ?, ?, ?)`),
		f.Plant, f.Branch, f.House, f.Name, lat, lng)
	if err != nil {
		return fmt.Errorf("create farm: %w", err)
	}
	f.ID = id
	return nil
}

func (db *DB) GetFarm(id int64) (*Farm, error) {
	row := db.QueryRow(db.Q(`SELECT id, plant, branch, house, name, lat, lng, created_at FROM farms WHERE id=?`), id)
	return scanFarm(row)
}

func (db *DB) ListFarms() ([]*Farm, error) {
	rows, err := db.Query(`SELECT id, plant, branch, house, name, lat, lng, created_at FROM farms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var farms []*Farm
	for rows.Next() {
		f, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		farms = append(farms, f)
	}
	return farms, rows.Err()
}

func scanFarm(row interface{ Scan(...any) error }) (*Farm, error) {
	var f Farm
	var lat, lng sql.NullFloat64
	var createdAt any
	if err := row.Scan(&f.ID, &f.Plant, &f.Branch, &f.House, &f.Name, &lat, &lng, &createdAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		f.Lat = &lat.Float64
	}
	if lng.Valid {
		f.Lng = &lng.Float64
	}
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}

func (db *DB) CreateFactory(f *Factory) error {
	var lat, lng any
	if f.Lat != nil {
		lat = *f.Lat
	}
	if f.Lng != nil {
		lng = *f.Lng
	}
	id, err := db.insertID(db.Q(`INSERT INTO factories (site, name, lat, lng) VALUES (?, ?, ?, ?)`),
		f.Site, f.Name, lat, lng)
	if err != nil {
		return fmt.Errorf("create factory: %w", err)
	}
	f.ID = id
	return nil
}

func (db *DB) GetFactoryBySite(site string) (*Factory, error) {
	row := db.QueryRow(db.Q(`SELECT id, site, name, lat, lng, created_at FROM factories WHERE site=?`), site)
	return scanFactory(row)
}

func (db *DB) ListFactories() ([]*Factory, error) {
	rows, err := db.Query(`SELECT id, site, name, lat, lng, created_at FROM factories ORDER BY site`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var factories []*Factory
	for rows.Next() {
		f, err := scanFactory(rows)
		if err != nil {
			return nil, err
		}
		factories = append(factories, f)
	}
	return factories, rows.Err()
}

func scanFactory(row interface{ Scan(...any) error }) (*Factory, error) {
	var f Factory
	var lat, lng sql.NullFloat64
	var createdAt any
	if err := row.Scan(&f.ID, &f.Site, &f.Name, &lat, &lng, &createdAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		f.Lat = &lat.Float64
	}
	if lng.Valid {
		f.Lng = &lng.Float64
	}
	f.CreatedAt = parseTime(createdAt)
	return &f, nil
}

func (db *DB) CreateTruck(t *Truck) error {
	id, err := db.insertID(db.Q(`INSERT INTO trucks (plate) VALUES (?)`), t.Plate)
	if err != nil {
		return fmt.Errorf("create truck: %w", err)
	}
	t.ID = id
	return nil
}

func (db *DB) GetTruckByPlate(plate string) (*Truck, error) {
	var t Truck
	var createdAt any
	err := db.QueryRow(db.Q(`SELECT id, plate, created_at FROM trucks WHERE plate=?`), plate).
		Scan(&t.ID, &t.Plate, &createdAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = parseTime(createdAt)
	return &t, nil
}
