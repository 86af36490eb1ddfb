// Package seed loads demo records into the store.
package seed

import (
	_ "embed"
	"fmt"
	"os"

	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/store"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type Data struct {
	Properties   []models.Property    `yaml:"properties"`
	Users        []models.User        `yaml:"users"`
	Bookings     []models.Booking     `yaml:"bookings"`
	Rentals      []models.Rental      `yaml:"rentals"`
	Transactions []models.Transaction `yaml:"transactions"`
	Listings     []models.Listing     `yaml:"listings"`
	Locations    []models.Location    `yaml:"locations"`
}

// Generators are the id allocators that must skip past seeded ids.
type Generators struct {
	Users        idgen.Generator
	Bookings     idgen.Generator
	Rentals      idgen.Generator
	Properties   idgen.Generator
	Transactions idgen.Generator
}

func Demo() (Data, error) {
	return parse(demoYAML)
}

// Load reads a seed file. An empty path returns the built-in demo data.
func Load(path string) (Data, error) {
	if path == "" {
		return Demo()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, fmt.Errorf("read seed file: %w", err)
	}
	return parse(raw)
}

func parse(raw []byte) (Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return Data{}, fmt.Errorf("parse seed data: %w", err)
	}
	if err := d.validate(); err != nil {
		return Data{}, err
	}
	return d, nil
}

func (d Data) validate() error {
	checks := []struct {
		entity string
		ids    []string
	}{
		{store.EntityProperty, idsOf(d.Properties)},
		{store.EntityUser, idsOf(d.Users)},
		{store.EntityBooking, idsOf(d.Bookings)},
		{store.EntityRental, idsOf(d.Rentals)},
		{store.EntityTransaction, idsOf(d.Transactions)},
		{store.EntityListing, idsOf(d.Listings)},
		{store.EntityLocation, idsOf(d.Locations)},
	}
	for _, c := range checks {
		seen := make(map[string]struct{}, len(c.ids))
		for _, id := range c.ids {
			if id == "" {
				return fmt.Errorf("seed %s: empty id", c.entity)
			}
			if _, dup := seen[id]; dup {
				return fmt.Errorf("seed %s %q: %w", c.entity, id, store.ErrDuplicateID)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

func idsOf[T store.Record](records []T) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.GetID()
	}
	return out
}

// Apply replaces every collection with the seed records, in file order.
func Apply(st *store.Store, d Data) {
	st.Properties.Replace(d.Properties)
	st.Users.Replace(d.Users)
	st.Bookings.Replace(d.Bookings)
	st.Rentals.Replace(d.Rentals)
	st.Transactions.Replace(d.Transactions)
	st.Listings.Replace(d.Listings)
	st.Locations.Replace(d.Locations)
}

// Observe advances sequence generators past the seeded ids.
func (g Generators) Observe(d Data) {
	idgen.Observe(g.Users, idsOf(d.Users)...)
	idgen.Observe(g.Bookings, idsOf(d.Bookings)...)
	idgen.Observe(g.Rentals, idsOf(d.Rentals)...)
	idgen.Observe(g.Properties, idsOf(d.Properties)...)
	idgen.Observe(g.Transactions, idsOf(d.Transactions)...)
}
