package stats

import (
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
)

type CRMStats struct {
	TotalContacts        int64            `json:"total_contacts"`
	ContactsByStatus     map[string]int64 `json:"contacts_by_status"`
	NewContactsThisMonth int64            `json:"new_contacts_this_month"`
	LeadsByStage         map[string]int64 `json:"leads_by_stage"`
}

type FunnelStats struct {
	LeadsByStage      map[string]int64 `json:"leads_by_stage"`
	OpenLeads         int64            `json:"open_leads"`
	Won               int64            `json:"won"`
	Lost              int64            `json:"lost"`
	ConversionRate    float64          `json:"conversion_rate"`
	OpenDealValue     commondto.Money  `json:"open_deal_value"`
	WonValueThisMonth commondto.Money  `json:"won_value_this_month"`
}

type MonthlyRevenue struct {
	Month  string          `json:"month"`
	Amount commondto.Money `json:"amount"`
}

type GatewayRevenueDTO struct {
	Gateway string          `json:"gateway"`
	Amount  commondto.Money `json:"amount"`
	Count   int64           `json:"count"`
}

type PaymentStats struct {
	RevenueThisMonth        commondto.Money     `json:"revenue_this_month"`
	RevenueTotal            commondto.Money     `json:"revenue_total"`
	RefundedTotal           commondto.Money     `json:"refunded_total"`
	PendingCount            int64               `json:"pending_count"`
	MonthlyRevenue          []MonthlyRevenue    `json:"monthly_revenue"`
	RevenueByGateway        []GatewayRevenueDTO `json:"revenue_by_gateway"`
	ActiveRecurring         int64               `json:"active_recurring"`
	MonthlyRecurringRevenue commondto.Money     `json:"monthly_recurring_revenue"`
}

type MessagingStats struct {
	UnreadSocialMessages int64 `json:"unread_social_messages"`
	ActiveEnrollments    int64 `json:"active_enrollments"`
	PendingReminders     int64 `json:"pending_reminders"`
}

type Overview struct {
	CRM       *CRMStats       `json:"crm"`
	Funnel    *FunnelStats    `json:"funnel"`
	Payments  *PaymentStats   `json:"payments"`
	Messaging *MessagingStats `json:"messaging"`
}
