package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/testutil"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/websocket"
	"github.com/shopspring/decimal"
)

type backupFixture struct {
	loanRepo     *testutil.MockLoanRepository
	investorRepo *testutil.MockInvestorRepository
	store        *testutil.MockBackupStore
	email        *testutil.MockEmailSender
	service      *BackupService
}

func newBackupFixture() *backupFixture {
	f := &backupFixture{
		loanRepo:     testutil.NewMockLoanRepository(),
		investorRepo: testutil.NewMockInvestorRepository(),
		store:        testutil.NewMockBackupStore(),
		email:        &testutil.MockEmailSender{},
	}
	f.service = NewBackupService(
		f.loanRepo, f.investorRepo, f.store, f.email,
		[]string{"owner@example.com"}, &websocket.NoOpPublisher{},
	)
	return f
}

func backupUser() *domain.User {
	return &domain.User{ID: uuid.New(), Email: "admin@example.com"}
}

func (f *backupFixture) seedLoan(t *testing.T) *domain.Loan {
	t.Helper()
	loan, err := f.loanRepo.Create(&domain.Loan{
		CustomerName: "Ravi Kumar",
		Amount:       decimal.NewFromInt(100000),
		GivenAmount:  decimal.NewFromInt(100000),
		StartDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Plan:         domain.FinancePlan{DurationMonths: 10, InterestRate: decimal.NewFromInt(2)},
	})
	if err != nil {
		t.Fatalf("seed loan failed: %v", err)
	}
	return loan
}

func (f *backupFixture) seedInvestor(t *testing.T) *domain.Investor {
	t.Helper()
	investor, err := f.investorRepo.Create(&domain.Investor{
		Name:             "Venkata Rao",
		InvestmentType:   domain.InvestmentFixedProfit,
		InvestmentAmount: decimal.NewFromInt(100000),
		ProfitRate:       decimal.NewFromInt(2),
		StartDate:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:           domain.InvestorOnTrack,
	})
	if err != nil {
		t.Fatalf("seed investor failed: %v", err)
	}
	return investor
}

func TestCreateBackup_Success(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)
	f.seedInvestor(t)

	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	doc, err := f.service.CreateBackup(context.Background(), backupUser(), at)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if doc.FileName != "backup-2024-05-01-093000.json" {
		t.Errorf("Unexpected file name: %s", doc.FileName)
	}
	if len(doc.Loans) != 1 || len(doc.Investors) != 1 {
		t.Errorf("Expected 1 loan and 1 investor, got %d/%d", len(doc.Loans), len(doc.Investors))
	}
	if doc.UserEmail != "admin@example.com" {
		t.Errorf("Expected backup attributed to admin, got %s", doc.UserEmail)
	}

	if _, ok := f.store.Docs[doc.FileName]; !ok {
		t.Error("Expected snapshot to be written to the store")
	}
}

func TestCreateBackup_EmptyBooksStillStored(t *testing.T) {
	f := newBackupFixture()

	doc, err := f.service.CreateBackup(context.Background(), backupUser(), time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(doc.Loans) != 0 || len(doc.Investors) != 0 {
		t.Error("Expected empty books in snapshot")
	}
}

func TestCreateBackup_StoreFailure(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)
	f.store.Err = errors.New("bucket unavailable")

	_, err := f.service.CreateBackup(context.Background(), backupUser(), time.Now())
	if err == nil {
		t.Error("Expected store failure to surface")
	}
}

func TestListBackups(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)

	for _, at := range []time.Time{
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC),
	} {
		if _, err := f.service.CreateBackup(context.Background(), backupUser(), at); err != nil {
			t.Fatalf("CreateBackup failed: %v", err)
		}
	}

	backups, err := f.service.ListBackups(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(backups) != 2 {
		t.Fatalf("Expected 2 backups, got %d", len(backups))
	}
	// Newest first
	if backups[0].FileName != "backup-2024-05-02-090000.json" {
		t.Errorf("Expected newest backup first, got %s", backups[0].FileName)
	}
}

func TestRestore_ReplacesBooks(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)
	f.seedInvestor(t)

	doc, err := f.service.CreateBackup(context.Background(), backupUser(), time.Now())
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	// Mutate the books after the snapshot
	f.seedLoan(t)
	f.seedInvestor(t)
	loans, _ := f.loanRepo.GetAll()
	if len(loans) != 2 {
		t.Fatalf("Expected 2 loans before restore, got %d", len(loans))
	}

	restored, err := f.service.Restore(context.Background(), doc.FileName)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if restored.FileName != doc.FileName {
		t.Errorf("Expected restored doc %s, got %s", doc.FileName, restored.FileName)
	}

	loans, _ = f.loanRepo.GetAll()
	investors, _ := f.investorRepo.GetAll()
	if len(loans) != 1 || len(investors) != 1 {
		t.Errorf("Expected books back to snapshot state, got %d loans / %d investors",
			len(loans), len(investors))
	}
}

func TestRestore_NotFound(t *testing.T) {
	f := newBackupFixture()

	_, err := f.service.Restore(context.Background(), "backup-missing.json")
	if err != domain.ErrBackupNotFound {
		t.Errorf("Expected ErrBackupNotFound, got %v", err)
	}
}

func TestRestore_EmptySnapshotRejected(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)

	// An empty snapshot must not wipe a populated book
	f.store.Docs["backup-empty.json"] = &domain.BackupDocument{FileName: "backup-empty.json"}

	_, err := f.service.Restore(context.Background(), "backup-empty.json")
	if err != domain.ErrBackupEmpty {
		t.Errorf("Expected ErrBackupEmpty, got %v", err)
	}

	loans, _ := f.loanRepo.GetAll()
	if len(loans) != 1 {
		t.Errorf("Expected loan book untouched, got %d loans", len(loans))
	}
}

func TestEmailBackup_SendsSummary(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)

	doc, err := f.service.EmailBackup(context.Background(), backupUser(), time.Now())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(f.email.Sent) != 1 {
		t.Fatalf("Expected 1 mail, got %d", len(f.email.Sent))
	}
	mail := f.email.Sent[0]
	if mail.To[0] != "owner@example.com" {
		t.Errorf("Expected configured recipient, got %v", mail.To)
	}
	if !strings.Contains(mail.Subject, doc.FileName) {
		t.Errorf("Expected file name in subject: %s", mail.Subject)
	}
	if !strings.Contains(mail.Body, "Loans: 1") {
		t.Errorf("Expected loan count in body: %s", mail.Body)
	}
}

func TestEmailBackup_MailFailureDoesNotFailBackup(t *testing.T) {
	f := newBackupFixture()
	f.seedLoan(t)
	f.email.Err = errors.New("smtp down")

	doc, err := f.service.EmailBackup(context.Background(), backupUser(), time.Now())
	if err != nil {
		t.Fatalf("Expected no error despite mail failure, got %v", err)
	}
	if _, ok := f.store.Docs[doc.FileName]; !ok {
		t.Error("Expected snapshot stored even when mail fails")
	}
}
