package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// adminEmailsCacheKey holds the cached roster in Redis. The TTL is short
// because correctness only requires the roster to be fresh, not instant;
// roster mutations happen through the admin CLI and are rare.
const (
	adminEmailsCacheKey = "admin_emails"
	adminEmailsCacheTTL = 30 * time.Second
)

type Storage interface {
	CreateComplaint(complaint *models.Complaint) error
	GetComplaintByID(id string) (*models.Complaint, error)
	ListComplaints() ([]models.Complaint, error)
	UpdateComplaintStatus(id, status string) (*models.Complaint, error)
	AttachFeedback(id, feedback string, rating int) (*models.Complaint, error)

	ListAdminEmails() ([]string, error)
	GetAdminByEmail(email string) (*models.Admin, error)
	UpsertAdmin(email, passwordHash string) (*models.Admin, error)
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor. The Redis client may be nil; roster reads
// then always go straight to PostgreSQL.
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// CreateComplaint persists a new complaint in PostgreSQL. The ID is assigned
// by the model's BeforeCreate hook; the default status is applied here so the
// returned record matches what was written.
func (s *Service) CreateComplaint(complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.StatusSubmitted
	}

	if err := s.DB.Create(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to save complaint %q: %v", complaint.Title, err)
		return err
	}
	return nil
}

// GetComplaintByID loads a single complaint by its primary key.
func (s *Service) GetComplaintByID(id string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.First(&complaint, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("complaint " + id)
	}
	if err != nil {
		log.Printf("ERROR: Failed to get complaint %s: %v", id, err)
		return nil, err
	}
	return &complaint, nil
}

// ListComplaints returns all complaints, newest first.
func (s *Service) ListComplaints() ([]models.Complaint, error) {
	var complaints []models.Complaint
	if err := s.DB.Order("created_at DESC").Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// UpdateComplaintStatus overwrites the status of an existing complaint and
// returns the post-update snapshot.
func (s *Service) UpdateComplaintStatus(id, status string) (*models.Complaint, error) {
	complaint, err := s.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}

	complaint.Status = status
	if err := s.DB.Save(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to update status of complaint %s: %v", id, err)
		return nil, err
	}
	return complaint, nil
}

// AttachFeedback sets the feedback text and rating on an existing complaint
// and returns the updated record. The once-only gate lives in the lifecycle
// service, not here.
func (s *Service) AttachFeedback(id, feedback string, rating int) (*models.Complaint, error) {
	complaint, err := s.GetComplaintByID(id)
	if err != nil {
		return nil, err
	}

	complaint.Feedback = &feedback
	complaint.Rating = &rating
	if err := s.DB.Save(complaint).Error; err != nil {
		log.Printf("ERROR: Failed to attach feedback to complaint %s: %v", id, err)
		return nil, err
	}
	return complaint, nil
}

// ListAdminEmails returns the current notification recipient list. The roster
// is read through a short-lived Redis cache; a cache failure degrades to a
// direct database read.
func (s *Service) ListAdminEmails() ([]string, error) {
	if s.Redis != nil {
		cached, err := s.Redis.SMembers(s.Ctx, adminEmailsCacheKey).Result()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			log.Printf("WARNING: Roster cache read failed, falling back to DB: %v", err)
		}
	}

	var emails []string
	if err := s.DB.Model(&models.Admin{}).Pluck("email", &emails).Error; err != nil {
		log.Printf("ERROR: Failed to list admin emails: %v", err)
		return nil, err
	}

	if s.Redis != nil && len(emails) > 0 {
		pipe := s.Redis.TxPipeline()
		pipe.SAdd(s.Ctx, adminEmailsCacheKey, toAnySlice(emails)...)
		pipe.Expire(s.Ctx, adminEmailsCacheKey, adminEmailsCacheTTL)
		if _, err := pipe.Exec(s.Ctx); err != nil {
			log.Printf("WARNING: Roster cache write failed: %v", err)
		}
	}

	return emails, nil
}

// GetAdminByEmail looks up one admin account for credential checks.
func (s *Service) GetAdminByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	err := s.DB.Where("email = ?", email).First(&admin).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("admin " + email)
	}
	if err != nil {
		log.Printf("ERROR: Failed to get admin %s: %v", email, err)
		return nil, err
	}
	return &admin, nil
}

// UpsertAdmin creates an admin account or replaces the password hash of an
// existing one, and invalidates the roster cache.
func (s *Service) UpsertAdmin(email, passwordHash string) (*models.Admin, error) {
	var admin models.Admin
	err := s.DB.Where("email = ?", email).First(&admin).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		admin = models.Admin{Email: email, PasswordHash: passwordHash}
		if err := s.DB.Create(&admin).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		admin.PasswordHash = passwordHash
		if err := s.DB.Save(&admin).Error; err != nil {
			return nil, err
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Del(s.Ctx, adminEmailsCacheKey).Err(); err != nil {
			log.Printf("WARNING: Failed to invalidate roster cache: %v", err)
		}
	}

	return &admin, nil
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
