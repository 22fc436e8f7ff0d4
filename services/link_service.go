package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"linklytics/models"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeLength      = 6
	maxCodeAttempts = 5
	defaultPageSize = 10
)

type LinkService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLinkService(db *gorm.DB, log *zap.Logger) *LinkService {
	return &LinkService{db: db, log: log}
}

// Create stores a new link for userID. customAlias, when non-empty, becomes
// both the alias and the lookup code; otherwise a random 6-character code is
// generated. expiresAt is stored verbatim.
func (s *LinkService) Create(userID uint, originalURL, customAlias string, expiresAt *time.Time) (*models.Link, error) {
	parsed, err := url.Parse(originalURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	link := &models.Link{
		UserID:      userID,
		OriginalURL: originalURL,
		ExpiresAt:   expiresAt,
	}

	if customAlias != "" {
		taken, err := s.codeInUse(customAlias)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrAliasTaken
		}
		link.ShortCode = customAlias
		link.CustomAlias = &customAlias
	} else {
		code, err := s.generateCode()
		if err != nil {
			return nil, err
		}
		link.ShortCode = code
	}

	if err := s.db.Create(link).Error; err != nil {
		s.log.Error("failed to create link", zap.Error(err))
		return nil, err
	}
	return link, nil
}

// codeInUse checks the union of the short_code and custom_alias columns, so
// a generated code can never shadow an alias and vice versa.
func (s *LinkService) codeInUse(code string) (bool, error) {
	var link models.Link
	err := s.db.Where("short_code = ? OR custom_alias = ?", code, code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *LinkService) generateCode() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := gonanoid.New(codeLength)
		if err != nil {
			return "", err
		}
		taken, err := s.codeInUse(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique short code after %d attempts", maxCodeAttempts)
}

// Resolve finds the link whose code or alias equals the inbound path segment
// and applies the expiry policy. Expired links stay manageable by their
// owner but resolve to ErrGone here.
func (s *LinkService) Resolve(code string) (*models.Link, error) {
	var link models.Link
	err := s.db.Where("short_code = ? OR custom_alias = ?", code, code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if link.Expired(time.Now()) {
		return nil, ErrGone
	}
	return &link, nil
}

// Get returns the link with the given id if it belongs to userID.
func (s *LinkService) Get(userID, id uint) (*models.Link, error) {
	var link models.Link
	err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// List returns one page of the caller's links, newest first, optionally
// filtered by a case-insensitive substring match against the destination
// URL, short code or alias. The second return value is the total page count.
func (s *LinkService) List(userID uint, page, limit int, search string) ([]models.Link, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	query := s.db.Model(&models.Link{}).Where("user_id = ?", userID)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(original_url) LIKE ? OR LOWER(short_code) LIKE ? OR LOWER(custom_alias) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var links []models.Link
	err := query.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return links, totalPages, nil
}

// Delete removes the caller's link and all of its click events. The two
// deletes are not transactional: if the event cleanup fails after the link
// is gone, the orphaned rows are logged and left behind.
func (s *LinkService) Delete(userID, id uint) error {
	link, err := s.Get(userID, id)
	if err != nil {
		return err
	}

	if err := s.db.Delete(&models.Link{}, link.ID).Error; err != nil {
		return err
	}
	if err := s.db.Where("link_id = ?", link.ID).Delete(&models.ClickEvent{}).Error; err != nil {
		s.log.Error("failed to delete click events for removed link",
			zap.Uint("link_id", link.ID),
			zap.Error(err))
	}
	return nil
}

// DashboardStats summarizes the caller's links for the dashboard landing
// page.
type DashboardStats struct {
	TotalLinks   int64         `json:"total_links"`
	TotalClicks  int64         `json:"total_clicks"`
	PopularLinks []models.Link `json:"popular_links"`
	RecentLinks  []models.Link `json:"recent_links"`
}

func (s *LinkService) Dashboard(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{}

	if err := s.db.Model(&models.Link{}).Where("user_id = ?", userID).Count(&stats.TotalLinks).Error; err != nil {
		return nil, err
	}

	err := s.db.Model(&models.Link{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(click_count), 0)").
		Row().Scan(&stats.TotalClicks)
	if err != nil {
		return nil, err
	}

	if err := s.db.Where("user_id = ?", userID).Order("click_count desc").Limit(5).Find(&stats.PopularLinks).Error; err != nil {
		return nil, err
	}
	if err := s.db.Where("user_id = ?", userID).Order("created_at desc").Limit(5).Find(&stats.RecentLinks).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
