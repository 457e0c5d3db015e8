package migrate

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"sql/001_employees.up.sql":   {Data: []byte("create table employee_profile (employee_id text primary key);")},
		"sql/001_employees.down.sql": {Data: []byte("drop table employee_profile;")},
		"sql/002_issues.up.sql":      {Data: []byte("create table issues (id text primary key);")},
		"sql/002_issues.down.sql":    {Data: []byte("drop table issues;")},
		"seeds/001_demo.sql":         {Data: []byte("insert into employee_profile(employee_id) values ('emp-demo');")},
	}
}

func expectEnsureTables(mock sqlmock.Sqlmock) {
	mock.ExpectExec("create table if not exists schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("create table if not exists schema_seeds").WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestUpAppliesPendingInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectEnsureTables(mock)
	mock.ExpectQuery("select name from schema_migrations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_employees.up.sql"))

	mock.ExpectBegin()
	mock.ExpectExec("create table issues").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("insert into schema_migrations").
		WithArgs("002_issues.up.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mgr := NewManager(db, testFS())
	if err := mgr.Up(context.Background()); err != nil {
		t.Fatalf("Up: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDownRollsBackLastApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectEnsureTables(mock)
	mock.ExpectQuery("select name from schema_migrations order by applied_at").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("001_employees.up.sql").
			AddRow("002_issues.up.sql"))

	mock.ExpectBegin()
	mock.ExpectExec("drop table issues").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	mock.ExpectExec("delete from schema_migrations").
		WithArgs("002_issues.up.sql").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mgr := NewManager(db, testFS())
	if err := mgr.Down(context.Background()); err != nil {
		t.Fatalf("Down: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDownWithNothingApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectEnsureTables(mock)
	mock.ExpectQuery("select name from schema_migrations order by applied_at").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	mgr := NewManager(db, testFS())
	if err := mgr.Down(context.Background()); err == nil {
		t.Fatal("expected an error with no applied migrations")
	}
}

func TestSeedSkipsAlreadyApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	expectEnsureTables(mock)
	mock.ExpectQuery("select name from schema_seeds").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("001_demo.sql"))

	mgr := NewManager(db, testFS())
	if err := mgr.Seed(context.Background()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestSplitStatements(t *testing.T) {
	raw := `insert into t(v) values ('a;b');
create index idx on t(v);`
	stmts := splitStatements(raw)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if stmts[0] != "insert into t(v) values ('a;b');" {
		t.Fatalf("quoted semicolon split: %q", stmts[0])
	}
}
