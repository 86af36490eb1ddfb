package service

import (
	"errors"
	"strconv"

	"rentease/internal/models"
	"rentease/internal/store"
	"rentease/internal/table"
)

const (
	TableUsers        = "users"
	TableBookings     = "bookings"
	TableRentals      = "rentals"
	TableProperties   = "properties"
	TableUpcoming     = "upcoming"
	TableTransactions = "transactions"
)

const (
	ExportUsers           = "users"
	ExportBookings        = "bookings"
	ExportBookingsRentals = "bookings_rentals"
	ExportRentals         = "rentals"
)

var (
	ErrUnknownTable  = errors.New("unknown table")
	ErrUnknownExport = errors.New("unknown export")
)

// ViewParams are the filter inputs shared by every table; each table reads the ones it knows.
type ViewParams struct {
	Query      string
	Status     string
	Role       string
	PropertyID string
	UserID     string
}

// Export is a header row plus data rows ready for CSV or XLSX encoding.
type Export struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Tables renders the dashboard tables from the store.
type Tables struct {
	store     *store.Store
	settings  *SettingsService
	dashboard *DashboardService

	users        *table.Table[models.User]
	bookings     *table.Table[models.Booking]
	rentals      *table.Table[models.Rental]
	properties   *table.Table[models.Property]
	upcoming     *table.Table[models.Booking]
	transactions *table.Table[models.Transaction]
}

func NewTables(st *store.Store, settings *SettingsService, dashboard *DashboardService) *Tables {
	t := &Tables{store: st, settings: settings, dashboard: dashboard}
	money := func(v int64) string { return settings.Format(v) }

	t.users = &table.Table[models.User]{
		Name: TableUsers,
		Columns: []table.Column[models.User]{
			{Header: "Name", Value: func(u models.User) string { return u.Name }},
			{Header: "Email", Value: func(u models.User) string { return u.Email }},
			{Header: "Status", Value: func(u models.User) string { return u.Status }},
			{Header: "Joined", Value: func(u models.User) string { return u.JoinedAt }},
			{Header: "Lifetime revenue", Value: func(u models.User) string { return money(u.LifetimeRevenue) }},
		},
		Key:         models.User.GetID,
		Placeholder: "No users",
	}

	t.bookings = &table.Table[models.Booking]{
		Name: TableBookings,
		Columns: []table.Column[models.Booking]{
			{Header: "ID", Value: func(b models.Booking) string { return b.ID }},
			{Header: "Guest", Value: func(b models.Booking) string { return b.Guest }},
			{Header: "Property", Value: func(b models.Booking) string { return st.PropertyName(b.PropertyID) }},
			{Header: "Check-in", Value: func(b models.Booking) string { return b.CheckIn }},
			{Header: "Check-out", Value: func(b models.Booking) string { return b.CheckOut }},
			{Header: "Nights", Value: func(b models.Booking) string { return strconv.Itoa(b.Nights) }},
			{Header: "Amount", Value: func(b models.Booking) string { return money(b.Amount) }},
			{Header: "Status", Value: func(b models.Booking) string { return b.Status }},
		},
		Key:         models.Booking.GetID,
		Placeholder: "No bookings",
	}

	t.rentals = &table.Table[models.Rental]{
		Name: TableRentals,
		Columns: []table.Column[models.Rental]{
			{Header: "ID", Value: func(r models.Rental) string { return r.ID }},
			{Header: "Booking", Value: func(r models.Rental) string { return r.BookingID }},
			{Header: "Property", Value: func(r models.Rental) string { return st.PropertyName(r.PropertyID) }},
			{Header: "Guest", Value: func(r models.Rental) string { return st.BookingGuest(r.BookingID) }},
			{Header: "Period", Value: period},
			{Header: "Nights", Value: func(r models.Rental) string { return strconv.Itoa(r.Nights) }},
			{Header: "Gross", Value: func(r models.Rental) string { return money(r.Gross) }},
			{Header: "Net", Value: func(r models.Rental) string { return money(r.Net) }},
		},
		Key:         models.Rental.GetID,
		Placeholder: "No rentals",
	}

	t.properties = &table.Table[models.Property]{
		Name: TableProperties,
		Columns: []table.Column[models.Property]{
			{Header: "Name", Value: func(p models.Property) string { return p.Name }},
			{Header: "Type", Value: func(p models.Property) string { return p.Type }},
			{Header: "Location", Value: func(p models.Property) string { return p.Location }},
			{Header: "Rooms", Value: func(p models.Property) string { return strconv.Itoa(p.Rooms) }},
		},
		Key:         models.Property.GetID,
		Placeholder: "No properties added yet.",
	}

	t.upcoming = &table.Table[models.Booking]{
		Name: TableUpcoming,
		Columns: []table.Column[models.Booking]{
			{Header: "Guest", Value: func(b models.Booking) string { return b.Guest }},
			{Header: "Property", Value: func(b models.Booking) string { return st.PropertyName(b.PropertyID) }},
			{Header: "Check-in", Value: func(b models.Booking) string { return b.CheckIn }},
			{Header: "Status", Value: func(b models.Booking) string { return b.Status }},
		},
		Key:         models.Booking.GetID,
		Placeholder: "No upcoming check-ins",
	}

	t.transactions = &table.Table[models.Transaction]{
		Name: TableTransactions,
		Columns: []table.Column[models.Transaction]{
			{Header: "Date", Value: func(tx models.Transaction) string { return tx.Date }},
			{Header: "Type", Value: func(tx models.Transaction) string { return tx.Type }},
			{Header: "Amount", Value: func(tx models.Transaction) string { return money(tx.Amount) }},
			{Header: "Booking", Value: func(tx models.Transaction) string { return tx.BookingID }},
			{Header: "Note", Value: func(tx models.Transaction) string { return tx.Note }},
		},
		Key:         models.Transaction.GetID,
		Placeholder: "No transactions",
	}

	return t
}

func period(r models.Rental) string {
	return r.PeriodStart + " → " + r.PeriodEnd
}

// Names lists the renderable tables.
func (t *Tables) Names() []string {
	return []string{TableUsers, TableBookings, TableRentals, TableProperties, TableUpcoming, TableTransactions}
}

// View renders the named table filtered by p at the current store version.
// The users view is split per role, so its name carries the role, e.g. "users-staff".
func (t *Tables) View(name string, p ViewParams) (table.View, error) {
	version := t.store.Version()

	switch name {
	case TableUsers:
		records := t.store.Users.Filter(userFilter(UserFilter{Role: p.Role, Status: p.Status, Query: p.Query}))
		v := t.users.Render(records, version)
		if p.Role != "" {
			v.Name = TableUsers + "-" + p.Role
		}
		return v, nil
	case TableBookings:
		records := t.store.Bookings.Filter(bookingFilter(t.store, BookingFilter{Query: p.Query, Status: p.Status, PropertyID: p.PropertyID}))
		return t.bookings.Render(records, version), nil
	case TableRentals:
		records := t.store.Rentals.Filter(rentalFilter(t.store, RentalFilter{Query: p.Query, PropertyID: p.PropertyID}))
		return t.rentals.Render(records, version), nil
	case TableProperties:
		records := t.store.Properties.Filter(propertyFilter(p.Query))
		return t.properties.Render(records, version), nil
	case TableUpcoming:
		return t.upcoming.Render(t.dashboard.Upcoming(), version), nil
	case TableTransactions:
		records := t.store.Transactions.All()
		if p.UserID != "" {
			records = transactionsFor(t.store, p.UserID)
		}
		v := t.transactions.Render(records, version)
		if p.UserID != "" {
			v.Name = TableTransactions + "-" + p.UserID
		}
		return v, nil
	default:
		return table.View{}, ErrUnknownTable
	}
}

// Exports lists the downloadable datasets.
func (t *Tables) Exports() []string {
	return []string{ExportUsers, ExportBookings, ExportBookingsRentals, ExportRentals}
}

// Export builds a raw (unformatted) dataset. Rentals may be limited to one property.
func (t *Tables) Export(name string, p ViewParams) (Export, error) {
	switch name {
	case ExportUsers:
		return t.exportUsers(p), nil
	case ExportBookings:
		return t.exportBookings(p), nil
	case ExportBookingsRentals:
		return t.exportBookingsRentals(), nil
	case ExportRentals:
		return t.exportRentals(p), nil
	default:
		return Export{}, ErrUnknownExport
	}
}

func (t *Tables) exportUsers(p ViewParams) Export {
	users := t.store.Users.Filter(userFilter(UserFilter{Role: p.Role, Status: p.Status, Query: p.Query}))
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Name, u.Email, u.Role, u.Status, u.JoinedAt, itoa64(u.LifetimeRevenue)})
	}
	return Export{
		Name:    ExportUsers,
		Headers: []string{"Name", "Email", "Role", "Status", "JoinedAt", "LifetimeRevenue"},
		Rows:    rows,
	}
}

func (t *Tables) exportBookings(p ViewParams) Export {
	bookings := t.store.Bookings.Filter(bookingFilter(t.store, BookingFilter{Query: p.Query, Status: p.Status, PropertyID: p.PropertyID}))
	rows := make([][]string, 0, len(bookings))
	for _, b := range bookings {
		rows = append(rows, []string{
			b.ID, b.Guest, t.store.PropertyName(b.PropertyID), b.CheckIn, b.CheckOut,
			strconv.Itoa(b.Nights), itoa64(b.Amount), b.Status,
		})
	}
	return Export{
		Name:    ExportBookings,
		Headers: []string{"Booking ID", "Guest", "Property", "Check-in", "Check-out", "Nights", "Amount", "Status"},
		Rows:    rows,
	}
}

// exportBookingsRentals lists bookings then rentals in one sheet. The last two
// columns hold amount and status for bookings, gross and net for rentals.
func (t *Tables) exportBookingsRentals() Export {
	bookings := t.store.Bookings.All()
	rentals := t.store.Rentals.All()
	rows := make([][]string, 0, len(bookings)+len(rentals))
	for _, b := range bookings {
		rows = append(rows, []string{
			"Booking", b.ID, t.store.PropertyName(b.PropertyID), b.Guest,
			b.CheckIn + " → " + b.CheckOut, strconv.Itoa(b.Nights), itoa64(b.Amount), b.Status,
		})
	}
	for _, r := range rentals {
		rows = append(rows, []string{
			"Rental", r.ID, t.store.PropertyName(r.PropertyID), t.store.BookingGuest(r.BookingID),
			period(r), strconv.Itoa(r.Nights), itoa64(r.Gross), itoa64(r.Net),
		})
	}
	return Export{
		Name:    ExportBookingsRentals,
		Headers: []string{"Type", "ID", "Property", "Guest", "Period", "Nights", "Gross/Amount", "Net/Status"},
		Rows:    rows,
	}
}

func (t *Tables) exportRentals(p ViewParams) Export {
	rentals := t.store.Rentals.Filter(rentalFilter(t.store, RentalFilter{Query: p.Query, PropertyID: p.PropertyID}))
	rows := make([][]string, 0, len(rentals))
	for _, r := range rentals {
		rows = append(rows, []string{
			r.ID, r.BookingID, t.store.PropertyName(r.PropertyID), t.store.BookingGuest(r.BookingID),
			period(r), strconv.Itoa(r.Nights), itoa64(r.Gross), itoa64(r.Net),
		})
	}
	return Export{
		Name:    ExportRentals,
		Headers: []string{"id", "bookingId", "property", "guest", "period", "nights", "gross", "net"},
		Rows:    rows,
	}
}

func itoa64(v int64) string { return strconv.FormatInt(v, 10) }
