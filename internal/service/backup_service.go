package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ravi5775/sri-vinayaka-tenders/internal/domain"
	"github.com/ravi5775/sri-vinayaka-tenders/internal/websocket"
	"github.com/rs/zerolog/log"
)

// BackupService snapshots the loan and investor books to the document store
// and restores them from stored snapshots.
type BackupService struct {
	loanRepo     domain.LoanRepository
	investorRepo domain.InvestorRepository
	store        domain.BackupStore
	email        EmailSender
	recipients   []string
	publisher    websocket.EventPublisher
}

// NewBackupService creates a new BackupService
func NewBackupService(
	loanRepo domain.LoanRepository,
	investorRepo domain.InvestorRepository,
	store domain.BackupStore,
	email EmailSender,
	recipients []string,
	publisher websocket.EventPublisher,
) *BackupService {
	return &BackupService{
		loanRepo:     loanRepo,
		investorRepo: investorRepo,
		store:        store,
		email:        email,
		recipients:   recipients,
		publisher:    publisher,
	}
}

// CreateBackup snapshots both books into one JSON document keyed by a
// timestamped file name.
func (s *BackupService) CreateBackup(ctx context.Context, user *domain.User, at time.Time) (*domain.BackupDocument, error) {
	loans, err := s.loanRepo.GetAll()
	if err != nil {
		return nil, err
	}
	investors, err := s.investorRepo.GetAll()
	if err != nil {
		return nil, err
	}

	doc := &domain.BackupDocument{
		Loans:      loans,
		Investors:  investors,
		UserID:     user.ID,
		UserEmail:  user.Email,
		BackedUpAt: at.UTC(),
		FileName:   fmt.Sprintf("backup-%s.json", at.UTC().Format("2006-01-02-150405")),
	}

	if err := s.store.Put(ctx, doc); err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.BackupCreated(&domain.BackupInfo{
		FileName:   doc.FileName,
		BackedUpAt: doc.BackedUpAt,
	}))
	return doc, nil
}

// ListBackups enumerates stored snapshots, newest first
func (s *BackupService) ListBackups(ctx context.Context) ([]*domain.BackupInfo, error) {
	return s.store.List(ctx)
}

// Restore replaces both books with the contents of a stored snapshot.
// A snapshot holding neither loans nor investors is rejected rather than
// silently wiping the books.
func (s *BackupService) Restore(ctx context.Context, fileName string) (*domain.BackupDocument, error) {
	doc, err := s.store.Get(ctx, fileName)
	if err != nil {
		return nil, err
	}
	if len(doc.Loans) == 0 && len(doc.Investors) == 0 {
		return nil, domain.ErrBackupEmpty
	}

	if err := s.loanRepo.ReplaceAll(doc.Loans); err != nil {
		return nil, err
	}
	if err := s.investorRepo.ReplaceAll(doc.Investors); err != nil {
		return nil, err
	}

	s.publisher.Publish(websocket.BackupRestored(&domain.BackupInfo{
		FileName:   doc.FileName,
		BackedUpAt: doc.BackedUpAt,
	}))
	return doc, nil
}

// EmailBackup takes a fresh snapshot and mails a summary of it to the
// configured recipients. Mail failure does not fail the backup itself.
func (s *BackupService) EmailBackup(ctx context.Context, user *domain.User, at time.Time) (*domain.BackupDocument, error) {
	doc, err := s.CreateBackup(ctx, user, at)
	if err != nil {
		return nil, err
	}

	subject := fmt.Sprintf("Sri Vinayaka Tenders backup %s", doc.FileName)
	body := fmt.Sprintf(
		"Backup %s taken at %s by %s.\n\nLoans: %d\nInvestors: %d\n",
		doc.FileName, doc.BackedUpAt.Format(time.RFC1123), doc.UserEmail,
		len(doc.Loans), len(doc.Investors),
	)

	if err := s.email.Send(s.recipients, subject, body); err != nil {
		log.Warn().Err(err).Str("file_name", doc.FileName).Msg("Backup notification mail failed")
	}
	return doc, nil
}
