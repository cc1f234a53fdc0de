// Package admin builds the administrator views: the dashboard overview and
// the user and marketing partner reports with CSV export.
package admin

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/google/uuid"

	"aiplatform/internal/domain"
	"aiplatform/internal/report"
	"aiplatform/pkg/cache"
	"aiplatform/pkg/logger"
)

const (
	overviewCacheKey = "admin:overview"
	overviewCacheTTL = 60 * time.Second
)

// UserRepository is the read surface for the user report.
type UserRepository interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// PartnerRepository is the read surface for the marketing report.
type PartnerRepository interface {
	FindAll(ctx context.Context) ([]domain.MarketingPartner, error)
}

// Cache is the small piece of the Redis cache the overview needs.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, key string) error
}

// Service builds the admin dashboard and reports.
type Service struct {
	users    UserRepository
	partners PartnerRepository
	cache    Cache
	logger   logger.Logger
}

// NewService constructs a Service. cache may be nil, in which case the
// overview is computed fresh on every request.
func NewService(users UserRepository, partners PartnerRepository, c Cache, log logger.Logger) *Service {
	return &Service{
		users:    users,
		partners: partners,
		cache:    c,
		logger:   log,
	}
}

// Overview returns the dashboard figures, served from cache for up to a
// minute. Cache failures fall through to a fresh computation.
func (s *Service) Overview(ctx context.Context) (*report.Overview, error) {
	if s.cache != nil {
		var cached report.Overview
		err := s.cache.Get(ctx, overviewCacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !cache.Miss(err) {
			s.logger.Warn("Overview cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	partners, err := s.partners.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	overview := report.BuildOverview(
		report.SummarizeUsers(users),
		report.SummarizePartners(partners),
	)

	if s.cache != nil {
		if err := s.cache.Set(ctx, overviewCacheKey, overview, overviewCacheTTL); err != nil {
			s.logger.Warn("Overview cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return &overview, nil
}

// InvalidateOverview drops the cached dashboard after a state-changing
// admin action so the next load reflects it.
func (s *Service) InvalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, overviewCacheKey); err != nil {
		s.logger.Warn("Overview cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// UserReport is the filtered user list with totals over the full set.
type UserReport struct {
	Users   []domain.User      `json:"users"`
	Summary report.UserSummary `json:"summary"`
}

// UserReport builds the admin user report for the given query. Admin
// accounts never appear in the rows.
func (s *Service) UserReport(ctx context.Context, q report.Query) (*UserReport, error) {
	all, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.User, 0, len(all))
	for _, u := range all {
		if u.Role != domain.RoleAdmin {
			rows = append(rows, u)
		}
	}

	filtered := report.Filter(rows, q,
		func(u domain.User) []string {
			return []string{u.Name, u.Email}
		},
		func(u domain.User) map[string]string {
			return map[string]string{
				"status": string(u.Status),
				"plan":   u.Plan,
			}
		},
	)

	return &UserReport{
		Users:   filtered,
		Summary: report.SummarizeUsers(all),
	}, nil
}

// PartnerReport is the filtered partner list with totals over the full set.
type PartnerReport struct {
	Partners []domain.MarketingPartner `json:"partners"`
	Summary  report.PartnerSummary     `json:"summary"`
}

// PartnerReport builds the admin marketing report for the given query.
func (s *Service) PartnerReport(ctx context.Context, q report.Query) (*PartnerReport, error) {
	all, err := s.partners.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := report.Filter(all, q,
		func(p domain.MarketingPartner) []string {
			return []string{p.Name, p.Email, p.Company, p.ReferralCode}
		},
		func(p domain.MarketingPartner) map[string]string {
			return map[string]string{"status": string(p.Status)}
		},
	)

	return &PartnerReport{
		Partners: filtered,
		Summary:  report.SummarizePartners(all),
	}, nil
}

// ExportUsersCSV renders a user report as CSV, matching the on-screen rows.
func (s *Service) ExportUsersCSV(ctx context.Context, q report.Query) ([]byte, error) {
	rep, err := s.UserReport(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Email", "Status", "Plan", "Balance", "Total Spent", "Joined"}); err != nil {
		return nil, err
	}
	for _, u := range rep.Users {
		record := []string{
			u.Name,
			u.Email,
			string(u.Status),
			u.Plan,
			u.Balance.StringFixed(2),
			u.TotalSpent.StringFixed(2),
			u.CreatedAt.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportPartnersCSV renders a marketing report as CSV.
func (s *Service) ExportPartnersCSV(ctx context.Context, q report.Query) ([]byte, error) {
	rep, err := s.PartnerReport(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"Name", "Email", "Company", "Status", "Referral Code",
		"Total Referred", "Paid Referrals", "Conversion Rate",
		"Total Commission", "Available Earnings",
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, p := range rep.Partners {
		record := []string{
			p.Name,
			p.Email,
			p.Company,
			string(p.Status),
			p.ReferralCode,
			strconv.Itoa(p.TotalReferred),
			strconv.Itoa(p.PaidReferrals),
			strconv.Itoa(report.ConversionRate(p.PaidReferrals, p.TotalReferred)) + "%",
			p.TotalCommission.StringFixed(2),
			p.AvailableEarnings.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
