package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/studionail/nailbook/services/booking-service/internal/model"
)

var (
	apptCols  = []string{"id", "designer_id", "client_name", "client_phone", "client_email", "service", "date", "time", "price_cents", "status", "created_at"}
	blockCols = []string{"id", "designer_id", "day_of_week", "specific_date", "start_time", "end_time", "is_available", "created_at"}
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock, NewRepository(mock, nil)
}

func TestLoadDayReadsConsistentSnapshot(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectQuery("FROM appointments").WithArgs("d1", "2025-12-01").WillReturnRows(
		pgxmock.NewRows(apptCols).
			AddRow("a1", "d1", "Ana", "119", "", "Gel", "2025-12-01", "10:00:00", int64(8000), "confirmed", now).
			AddRow("a2", "d1", "Bia", "118", "b@x.com", "Mani", "2025-12-01", "13:00:00", int64(5000), "cancelled", now),
	)
	mock.ExpectQuery("FROM availability").WithArgs("d1", "2025-12-01").WillReturnRows(
		pgxmock.NewRows(blockCols).
			AddRow("b1", "d1", 1, "2025-12-01", "09:00:00", "11:00:00", false, now).
			AddRow("b2", "d1", 1, "2025-12-01", "15:00:00", "14:00:00", false, now).
			AddRow("b3", "d1", 1, "2025-12-01", "00:00:00", "23:59:00", true, now),
	)
	mock.ExpectCommit()

	day, err := repo.LoadDay(context.Background(), "d1", "2025-12-01T08:00:00Z")
	if err != nil {
		t.Fatalf("LoadDay: %v", err)
	}
	if day.Date != "2025-12-01" || len(day.Appointments) != 2 || len(day.Blocks) != 3 {
		t.Fatalf("unexpected day: %+v", day)
	}
	if day.Appointments[0].Time.String() != "10:00" || day.Appointments[1].Status != model.StatusCancelled {
		t.Fatalf("unexpected appointments: %+v", day.Appointments)
	}
	if !day.Blocks[0].Active || day.Blocks[2].Active {
		t.Fatalf("is_available not inverted: %+v", day.Blocks)
	}
	if !day.Blocks[1].IsDegenerate() {
		t.Fatalf("degenerate block should be kept as read: %+v", day.Blocks[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoadDayRejectsMalformedRows(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	mock.ExpectQuery("FROM appointments").WithArgs("d1", "2025-12-01").WillReturnRows(
		pgxmock.NewRows(apptCols).
			AddRow("a1", "d1", "Ana", "119", "", "Gel", "2025-12-01", "1000", int64(0), "pending", time.Now()),
	)
	mock.ExpectRollback()

	_, err := repo.LoadDay(context.Background(), "d1", "2025-12-01")
	if !errors.Is(err, model.ErrMalformedTime) || !model.IsMalformed(err) {
		t.Fatalf("expected malformed time error, got %v", err)
	}
}

func TestLoadDayPropagatesBeginFailure(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectBeginTx(pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}).WillReturnError(errors.New("connection refused"))

	_, err := repo.LoadDay(context.Background(), "d1", "2025-12-01")
	if err == nil || model.IsMalformed(err) {
		t.Fatalf("expected transient error, got %v", err)
	}
}

func TestCreateAppointment(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()
	appt := model.Appointment{
		DesignerID: "d1", ClientName: "Ana", ClientPhone: "119", Service: "Gel",
		Date: "2025-12-01", Time: model.MustParseTimeOfDay("10:00"), PriceCents: 8000, Status: model.StatusPending,
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs("d1", "Ana", "119", "", "Gel", "2025-12-01", "10:00", int64(8000), "pending").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("a1", now))
	mock.ExpectQuery("INSERT INTO appointments").
		WithArgs("d1", "Ana", "119", "", "Gel", "2025-12-01", "10:00", int64(8000), "pending").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	ctx := context.Background()
	tx, err := repo.Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	got, err := repo.CreateAppointment(ctx, tx, appt)
	if err != nil || got.ID != "a1" || !got.CreatedAt.Equal(now) {
		t.Fatalf("CreateAppointment = %+v, %v", got, err)
	}
	if _, err := repo.CreateAppointment(ctx, tx, appt); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestUpdateAppointmentStatusNotFound(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE appointments").WithArgs("a1", "d1", "confirmed").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ctx := context.Background()
	tx, _ := repo.Begin(ctx)
	if err := repo.UpdateAppointmentStatus(ctx, tx, "d1", "a1", model.StatusConfirmed); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetAppointmentForUpdateNotFound(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("a1", "d1").WillReturnRows(pgxmock.NewRows(apptCols))

	ctx := context.Background()
	tx, _ := repo.Begin(ctx)
	if _, err := repo.GetAppointmentForUpdate(ctx, tx, "d1", "a1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAppointmentsFiltersByStatus(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectQuery("FROM appointments").WithArgs("d1", "pending", 50).WillReturnRows(
		pgxmock.NewRows(apptCols).AddRow("a1", "d1", "Ana", "119", "", "Gel", "2025-12-01", "10:00:00", int64(0), "pending", time.Now()),
	)
	appts, err := repo.ListAppointments(context.Background(), "d1", model.StatusPending, 0)
	if err != nil || len(appts) != 1 {
		t.Fatalf("ListAppointments = %v, %v", appts, err)
	}
}

func TestCreateBlockStoresInvertedFlagAndWeekday(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now().UTC()
	b, err := model.NewBlock("d1", "2025-12-24", model.Midnight, model.LastMinute)
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectBegin()
	// 2025-12-24 is a Wednesday.
	mock.ExpectQuery("INSERT INTO availability").
		WithArgs("d1", 3, "2025-12-24", "00:00", "23:59", false).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("b1", now))

	ctx := context.Background()
	tx, _ := repo.Begin(ctx)
	got, err := repo.CreateBlock(ctx, tx, b)
	if err != nil || got.ID != "b1" || !got.Active {
		t.Fatalf("CreateBlock = %+v, %v", got, err)
	}
}

func TestListBlocksSkipsWeeklyRules(t *testing.T) {
	mock, repo := newMock(t)
	now := time.Now()
	mock.ExpectQuery("FROM availability").WithArgs("d1", 100).WillReturnRows(
		pgxmock.NewRows(blockCols).
			AddRow("b1", "d1", 3, "2025-12-24", "00:00:00", "23:59:00", false, now).
			AddRow("b2", "d1", 2, "", "09:00:00", "18:00:00", true, now),
	)
	blocks, err := repo.ListBlocks(context.Background(), "d1", 0)
	if err != nil || len(blocks) != 1 || blocks[0].ID != "b1" {
		t.Fatalf("ListBlocks = %+v, %v", blocks, err)
	}
}

func TestSetBlockActive(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE availability").WithArgs("b1", "d1", true).WillReturnRows(
		pgxmock.NewRows(blockCols).AddRow("b1", "d1", 3, "2025-12-24", "09:00:00", "10:00:00", true, time.Now()),
	)
	mock.ExpectQuery("UPDATE availability").WithArgs("b9", "d1", false).WillReturnRows(pgxmock.NewRows(blockCols))

	ctx := context.Background()
	tx, _ := repo.Begin(ctx)
	b, err := repo.SetBlockActive(ctx, tx, "d1", "b1", false)
	if err != nil || b.Active || b.Date != "2025-12-24" {
		t.Fatalf("SetBlockActive = %+v, %v", b, err)
	}
	if _, err := repo.SetBlockActive(ctx, tx, "d1", "b9", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBlockReturnsDeletedRow(t *testing.T) {
	mock, repo := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery("DELETE FROM availability").WithArgs("b1", "d1").WillReturnRows(
		pgxmock.NewRows(blockCols).AddRow("b1", "d1", 3, "2025-12-24", "09:00:00", "10:00:00", false, time.Now()),
	)
	ctx := context.Background()
	tx, _ := repo.Begin(ctx)
	b, err := repo.DeleteBlock(ctx, tx, "d1", "b1")
	if err != nil || b.ID != "b1" {
		t.Fatalf("DeleteBlock = %+v, %v", b, err)
	}
}

func TestGetDesignerBySlug(t *testing.T) {
	mock, repo := newMock(t)
	cols := []string{"id", "name", "slug", "phone", "bio", "photo_url", "is_active"}
	mock.ExpectQuery("FROM nail_designers").WithArgs("ana-nails").WillReturnRows(
		pgxmock.NewRows(cols).AddRow("d1", "Ana Nails", "ana-nails", "119", "", "", true),
	)
	mock.ExpectQuery("FROM nail_designers").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	d, err := repo.GetDesignerBySlug(context.Background(), "ana-nails")
	if err != nil || d.ID != "d1" {
		t.Fatalf("GetDesignerBySlug = %+v, %v", d, err)
	}
	if _, err := repo.GetDesignerBySlug(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
