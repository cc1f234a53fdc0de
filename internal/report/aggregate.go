// Package report computes the summary statistics and record filtering
// behind the dashboard and report screens. Everything here is a pure
// reduction over in-memory rows: inputs are never mutated and every
// division is zero-guarded, so malformed or empty input degrades to
// zero/empty results rather than an error.
package report

import (
	"math"

	"github.com/shopspring/decimal"

	"aiplatform/internal/domain"
)

// ConversionRate returns paid referrals as an integer percentage of total,
// rounded half-up. A zero total yields 0.
func ConversionRate(paid, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(paid) / float64(total) * 100))
}

// PercentAllocation is the same shape as ConversionRate, reused for splits
// like paying users over total users.
func PercentAllocation(part, whole int) int {
	return ConversionRate(part, whole)
}

// Average divides sum by count, returning zero for an empty population
// regardless of the sum.
func Average(sum decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// PartnerSummary is the header block of the admin marketing report.
type PartnerSummary struct {
	TotalPartners     int             `json:"total_partners"`
	ActivePartners    int             `json:"active_partners"`
	TotalReferred     int             `json:"total_referred"`
	PaidReferrals     int             `json:"paid_referrals"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	AvailableEarnings decimal.Decimal `json:"available_earnings"`
	ConversionRate    int             `json:"conversion_rate"`
	AvgReferralsPer   decimal.Decimal `json:"avg_referrals_per_partner"`
}

// SummarizePartners reduces partner rows into the marketing report header.
func SummarizePartners(partners []domain.MarketingPartner) PartnerSummary {
	s := PartnerSummary{
		TotalPartners:     len(partners),
		TotalCommission:   decimal.Zero,
		AvailableEarnings: decimal.Zero,
	}

	totalReferredDec := decimal.Zero
	for _, p := range partners {
		if p.Status == domain.PartnerStatusActive {
			s.ActivePartners++
		}
		s.TotalReferred += p.TotalReferred
		s.PaidReferrals += p.PaidReferrals
		s.TotalCommission = s.TotalCommission.Add(p.TotalCommission)
		s.AvailableEarnings = s.AvailableEarnings.Add(p.AvailableEarnings)
		totalReferredDec = totalReferredDec.Add(decimal.NewFromInt(int64(p.TotalReferred)))
	}

	s.ConversionRate = ConversionRate(s.PaidReferrals, s.TotalReferred)
	s.AvgReferralsPer = Average(totalReferredDec, s.ActivePartners)
	return s
}

// UserSummary is the header block of the admin user report.
type UserSummary struct {
	TotalUsers   int             `json:"total_users"`
	ActiveUsers  int             `json:"active_users"`
	PayingUsers  int             `json:"paying_users"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgBalance   decimal.Decimal `json:"avg_balance"`
	PayingShare  int             `json:"paying_share"`
}

// SummarizeUsers reduces user rows into the user report header. Admin
// accounts are excluded from the population.
func SummarizeUsers(users []domain.User) UserSummary {
	s := UserSummary{
		TotalRevenue: decimal.Zero,
		AvgBalance:   decimal.Zero,
	}

	balanceSum := decimal.Zero
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			continue
		}
		s.TotalUsers++
		if u.Status == domain.UserStatusActive {
			s.ActiveUsers++
		}
		if u.TotalSpent.GreaterThan(decimal.Zero) {
			s.PayingUsers++
		}
		s.TotalRevenue = s.TotalRevenue.Add(u.TotalSpent)
		balanceSum = balanceSum.Add(u.Balance)
	}

	s.AvgBalance = Average(balanceSum, s.TotalUsers)
	s.PayingShare = PercentAllocation(s.PayingUsers, s.TotalUsers)
	return s
}

// RequestSummary counts payment or withdrawal requests by review state.
type RequestSummary struct {
	Total         int             `json:"total"`
	Pending       int             `json:"pending"`
	Approved      int             `json:"approved"`
	Rejected      int             `json:"rejected"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// SummarizePaymentRequests reduces recharge requests for the approval queue.
func SummarizePaymentRequests(requests []domain.PaymentRequest) RequestSummary {
	s := RequestSummary{PendingAmount: decimal.Zero, TotalAmount: decimal.Zero}
	for _, r := range requests {
		s.tally(r.Status, r.Amount)
	}
	return s
}

// SummarizeWithdrawals reduces withdrawal requests for the payout queue.
func SummarizeWithdrawals(requests []domain.WithdrawalRequest) RequestSummary {
	s := RequestSummary{PendingAmount: decimal.Zero, TotalAmount: decimal.Zero}
	for _, r := range requests {
		s.tally(r.Status, r.Amount)
	}
	return s
}

func (s *RequestSummary) tally(status domain.RequestStatus, amount decimal.Decimal) {
	s.Total++
	s.TotalAmount = s.TotalAmount.Add(amount)
	switch status {
	case domain.RequestStatusPending:
		s.Pending++
		s.PendingAmount = s.PendingAmount.Add(amount)
	case domain.RequestStatusApproved:
		s.Approved++
	case domain.RequestStatusRejected:
		s.Rejected++
	}
}

// ReferralSummary is the header of a partner's own referral report.
type ReferralSummary struct {
	TotalReferrals  int             `json:"total_referrals"`
	ActiveReferrals int             `json:"active_referrals"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

// SummarizeReferrals reduces a partner's referral rows.
func SummarizeReferrals(referrals []domain.Referral) ReferralSummary {
	s := ReferralSummary{TotalPaid: decimal.Zero, TotalCommission: decimal.Zero}
	for _, r := range referrals {
		s.TotalReferrals++
		if r.Status == domain.ReferralStatusActive {
			s.ActiveReferrals++
		}
		s.TotalPaid = s.TotalPaid.Add(r.TotalPaid)
		s.TotalCommission = s.TotalCommission.Add(r.Commission)
	}
	return s
}

// Overview is the admin dashboard header.
type Overview struct {
	TotalUsers      int             `json:"total_users"`
	PayingUsers     int             `json:"paying_users"`
	MarketingUsers  int             `json:"marketing_users"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	MarketingBudget decimal.Decimal `json:"marketing_budget"`
	PayingShare     int             `json:"paying_share"`
	AvgRevenuePer   decimal.Decimal `json:"avg_revenue_per_paying_user"`
}

// BuildOverview combines the user and partner summaries into the admin
// dashboard figures. MarketingBudget is the commission still owed.
func BuildOverview(users UserSummary, partners PartnerSummary) Overview {
	return Overview{
		TotalUsers:      users.TotalUsers,
		PayingUsers:     users.PayingUsers,
		MarketingUsers:  partners.TotalPartners,
		TotalPaid:       users.TotalRevenue,
		MarketingBudget: partners.AvailableEarnings,
		PayingShare:     users.PayingShare,
		AvgRevenuePer:   Average(users.TotalRevenue, users.PayingUsers),
	}
}
