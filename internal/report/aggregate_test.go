package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"aiplatform/internal/domain"
)

func TestConversionRate(t *testing.T) {
	assert.Equal(t, 0, ConversionRate(0, 0))
	assert.Equal(t, 0, ConversionRate(5, 0))
	assert.Equal(t, 50, ConversionRate(5, 10))
	// 42.857 rounds half-up to 43
	assert.Equal(t, 43, ConversionRate(3, 7))
	assert.Equal(t, 100, ConversionRate(10, 10))
}

func TestAverageZeroGuard(t *testing.T) {
	assert.True(t, Average(decimal.NewFromInt(500), 0).IsZero())
	assert.True(t, Average(decimal.Zero, 0).IsZero())

	avg := Average(decimal.NewFromInt(90), 3)
	assert.True(t, avg.Equal(decimal.NewFromInt(30)))
}

func TestSummarizePartners(t *testing.T) {
	partners := []domain.MarketingPartner{
		{
			Status:            domain.PartnerStatusActive,
			TotalReferred:     10,
			PaidReferrals:     5,
			TotalCommission:   decimal.NewFromFloat(200),
			AvailableEarnings: decimal.NewFromFloat(120.50),
		},
		{
			Status:            domain.PartnerStatusActive,
			TotalReferred:     4,
			PaidReferrals:     1,
			TotalCommission:   decimal.NewFromFloat(50),
			AvailableEarnings: decimal.NewFromFloat(10),
		},
		{
			Status:        domain.PartnerStatusPending,
			TotalReferred: 0,
			PaidReferrals: 0,
		},
	}

	s := SummarizePartners(partners)
	assert.Equal(t, 3, s.TotalPartners)
	assert.Equal(t, 2, s.ActivePartners)
	assert.Equal(t, 14, s.TotalReferred)
	assert.Equal(t, 6, s.PaidReferrals)
	// 6/14 = 42.857 -> 43
	assert.Equal(t, 43, s.ConversionRate)
	assert.True(t, s.TotalCommission.Equal(decimal.NewFromFloat(250)))
	assert.True(t, s.AvailableEarnings.Equal(decimal.NewFromFloat(130.50)))
	// 14 referred / 2 active = 7
	assert.True(t, s.AvgReferralsPer.Equal(decimal.NewFromInt(7)))
}

func TestSummarizePartnersEmpty(t *testing.T) {
	s := SummarizePartners(nil)
	assert.Equal(t, 0, s.TotalPartners)
	assert.Equal(t, 0, s.ConversionRate)
	assert.True(t, s.AvgReferralsPer.IsZero())
	assert.True(t, s.TotalCommission.IsZero())
}

func TestSummarizeUsers(t *testing.T) {
	users := []domain.User{
		{
			Role:       domain.RoleUser,
			Status:     domain.UserStatusActive,
			Balance:    decimal.NewFromFloat(100),
			TotalSpent: decimal.NewFromFloat(300),
		},
		{
			Role:       domain.RoleUser,
			Status:     domain.UserStatusInactive,
			Balance:    decimal.NewFromFloat(50),
			TotalSpent: decimal.Zero,
		},
		{
			Role:       domain.RoleAdmin,
			Status:     domain.UserStatusActive,
			Balance:    decimal.NewFromFloat(999),
			TotalSpent: decimal.NewFromFloat(999),
		},
	}

	s := SummarizeUsers(users)
	assert.Equal(t, 2, s.TotalUsers)
	assert.Equal(t, 1, s.ActiveUsers)
	assert.Equal(t, 1, s.PayingUsers)
	assert.True(t, s.TotalRevenue.Equal(decimal.NewFromFloat(300)))
	assert.True(t, s.AvgBalance.Equal(decimal.NewFromFloat(75)))
	assert.Equal(t, 50, s.PayingShare)
}

func TestSummarizePaymentRequests(t *testing.T) {
	requests := []domain.PaymentRequest{
		{Status: domain.RequestStatusPending, Amount: decimal.NewFromFloat(50)},
		{Status: domain.RequestStatusPending, Amount: decimal.NewFromFloat(25.25)},
		{Status: domain.RequestStatusApproved, Amount: decimal.NewFromFloat(100)},
		{Status: domain.RequestStatusRejected, Amount: decimal.NewFromFloat(10)},
	}

	s := SummarizePaymentRequests(requests)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Pending)
	assert.Equal(t, 1, s.Approved)
	assert.Equal(t, 1, s.Rejected)
	assert.True(t, s.PendingAmount.Equal(decimal.NewFromFloat(75.25)))
	assert.True(t, s.TotalAmount.Equal(decimal.NewFromFloat(185.25)))
}

func TestBuildOverview(t *testing.T) {
	users := UserSummary{
		TotalUsers:   1542,
		PayingUsers:  342,
		TotalRevenue: decimal.NewFromFloat(45678.50),
		PayingShare:  22,
	}
	partners := PartnerSummary{
		TotalPartners:     45,
		AvailableEarnings: decimal.NewFromFloat(12500.00),
	}

	o := BuildOverview(users, partners)
	assert.Equal(t, 1542, o.TotalUsers)
	assert.Equal(t, 45, o.MarketingUsers)
	assert.True(t, o.MarketingBudget.Equal(decimal.NewFromFloat(12500.00)))
	assert.True(t, o.AvgRevenuePer.Equal(decimal.NewFromFloat(45678.50).Div(decimal.NewFromInt(342))))
}

func TestBuildOverviewNoPayingUsers(t *testing.T) {
	o := BuildOverview(UserSummary{TotalRevenue: decimal.NewFromInt(100)}, PartnerSummary{})
	assert.True(t, o.AvgRevenuePer.IsZero())
}
