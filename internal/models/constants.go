package models

const (
	RoleManager  = "manager"
	RoleStaff    = "staff"
	RoleReadonly = "readonly"
)

const (
	UserActive   = "active"
	UserInactive = "inactive"
)

const (
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCancelled  = "cancelled"
	StatusCheckedOut = "checked_out"
)

const (
	PaymentPaid     = "paid"
	PaymentPending  = "pending"
	PaymentRefunded = "refunded"
)

const (
	TxPayout = "Payout"
	TxRefund = "Refund"
)

const (
	CurrencyUSD = "USD"
	CurrencyPHP = "PHP"
)

// Key-value store keys shared by the storefront and the dashboards.
const (
	KeyRememberedEmail = "rememberedEmail"
	KeySubscribers     = "rentease_subscribers_v1"
	KeyAccounts        = "rentease_users_v1"
	KeyDarkMode        = "md_dark"
	KeyEmailNotif      = "md_email_notif"
	KeyCurrency        = "md_currency"
	KeyProperties      = "properties"
	KeySessionPrefix   = "session:"
)

const (
	// DateLayout is the calendar date format used by bookings, rentals and transactions.
	DateLayout = "2006-01-02"

	// UpcomingWindowDays bounds the upcoming check-ins list.
	UpcomingWindowDays = 30
	// UpcomingLimit caps how many upcoming check-ins are shown.
	UpcomingLimit = 5
	// AlertWindowDays is how far ahead confirmed check-ins raise an alert.
	AlertWindowDays = 7

	// DefaultGeneratedUnits is how many listings "explore more" appends.
	DefaultGeneratedUnits = 20
	// MaxGeneratedUnits caps a single "explore more" request.
	MaxGeneratedUnits = 100

	// MaxIDUploadBytes is the largest accepted ID document.
	MaxIDUploadBytes = 4 * 1024 * 1024
)

// Roles lists the dashboard roles in table order.
var Roles = []string{RoleManager, RoleStaff, RoleReadonly}

func ValidRole(role string) bool {
	switch role {
	case RoleManager, RoleStaff, RoleReadonly:
		return true
	}
	return false
}

func ValidBookingStatus(status string) bool {
	switch status {
	case StatusConfirmed, StatusCheckedIn, StatusCancelled, StatusCheckedOut:
		return true
	}
	return false
}

func ValidPaymentStatus(status string) bool {
	switch status {
	case PaymentPaid, PaymentPending, PaymentRefunded:
		return true
	}
	return false
}

func ValidUserStatus(status string) bool {
	return status == UserActive || status == UserInactive
}
