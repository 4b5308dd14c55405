package my

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rangequery-bench/bench"
	"rangequery-bench/sqldb"

	_ "github.com/go-sql-driver/mysql"
)

var Dialect = sqldb.Dialect{
	Name: "mysql",
	Schema: []string{`
		CREATE TABLE IF NOT EXISTS PERSON (
			id INT PRIMARY KEY,
			org_id INT NULL,
			first_name VARCHAR(255),
			last_name VARCHAR(255),
			salary DOUBLE,
			INDEX person_salary_idx (salary)
		)
	`},
}

func Connect(c bench.ConnConfig, maxConns int) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&allowCleartextPasswords=true&timeout=30s",
		c.User, c.Password, c.Host, c.Port, c.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateDatabase creates the disposable database name on the server behind
// admin. name must come from bench.TempDatabaseName.
func CreateDatabase(ctx context.Context, admin *sql.DB, name string) error {
	if _, err := admin.ExecContext(ctx, "CREATE DATABASE "+name); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

func DropDatabase(ctx context.Context, admin *sql.DB, name string) error {
	if _, err := admin.ExecContext(ctx, "DROP DATABASE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop database %s: %w", name, err)
	}
	return nil
}
