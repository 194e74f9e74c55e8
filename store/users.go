package store

import (
	"fmt"
	"time"
)

// Roles understood by the board's authorization scopes.
const (
	RoleDriver  = "driver"
	RoleFarmSup = "farm_supervisor"
	RoleFactory = "factory_clerk"
	RoleManager = "manager"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

func (db *DB) CreateUser(u *User) error {
	id, err := db.insertID(db.Q(`INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?)`),
		u.Username, u.PasswordHash, u.Role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.ID = id
	return nil
}

func (db *DB) GetUser(id int64) (*User, error) {
	row := db.QueryRow(db.Q(`SELECT id, username, password_hash, role, created_at FROM users WHERE id=?`), id)
	return scanUser(row)
}

func (db *DB) GetUserByUsername(username string) (*User, error) {
	row := db.QueryRow(db.Q(`SELECT id, username, password_hash, role, created_at FROM users WHERE username=?`), username)
	return scanUser(row)
}

func (db *DB) UserExists() (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n > 0, err
}

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	var createdAt any
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &createdAt); err != nil {
		return nil, err
	}
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

// --- authorization scope relations ---

func (db *DB) AssignTruck(driverID, truckID int64) error {
	_, err := db.Exec(db.Q(`INSERT INTO driver_trucks (driver_id, truck_id) VALUES (?, ?)`), driverID, truckID)
	return err
}

// TruckPlatesForDriver returns plates of trucks actively assigned to a driver.
func (db *DB) TruckPlatesForDriver(driverID int64) ([]string, error) {
	rows, err := db.Query(db.Q(`SELECT t.plate FROM driver_trucks dt JOIN trucks t ON t.id = dt.truck_id WHERE dt.driver_id=? AND dt.status='active'`), driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var plates []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		plates = append(plates, p)
	}
	return plates, rows.Err()
}

func (db *DB) AssignFarm(userID, farmID int64) error {
	_, err := db.Exec(db.Q(`INSERT INTO user_farms (user_id, farm_id) VALUES (?, ?)`), userID, farmID)
	return err
}

// FarmIDsForUser returns farms a supervisor actively oversees.
func (db *DB) FarmIDsForUser(userID int64) ([]int64, error) {
	rows, err := db.Query(db.Q(`SELECT farm_id FROM user_farms WHERE user_id=? AND status='active'`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (db *DB) AssignSite(userID int64, site string) error {
	_, err := db.Exec(db.Q(`INSERT INTO user_sites (user_id, site) VALUES (?, ?)`), userID, site)
	return err
}

// SitesForUser returns factory sites a receiving clerk is authorized for.
func (db *DB) SitesForUser(userID int64) ([]string, error) {
	rows, err := db.Query(db.Q(`SELECT site FROM user_sites WHERE user_id=? AND status='active'`), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sites []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}
