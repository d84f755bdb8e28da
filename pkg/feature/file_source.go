package feature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// flagsFile is the YAML document schema for flag definition files.
type flagsFile struct {
	Flags []fileFlag `yaml:"flags"`
}

type fileFlag struct {
	Key          string   `yaml:"key"`
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Type         string   `yaml:"type"`
	Enabled      bool     `yaml:"enabled"`
	DefaultValue bool     `yaml:"default_value"`
	Percentage   *int     `yaml:"percentage"`
	Environments []string `yaml:"environments"`

	UserTargeting *struct {
		UserIDs    []string `yaml:"user_ids"`
		UserRoles  []string `yaml:"user_roles"`
		UserEmails []string `yaml:"user_emails"`
	} `yaml:"user_targeting"`

	OrganizationTargeting *struct {
		OrganizationIDs   []string `yaml:"organization_ids"`
		OrganizationTypes []string `yaml:"organization_types"`
	} `yaml:"organization_targeting"`

	Schedule *struct {
		StartDate  *time.Time `yaml:"start_date"`
		EndDate    *time.Time `yaml:"end_date"`
		Recurrence *struct {
			Type       string `yaml:"type"`
			DaysOfWeek []int  `yaml:"days_of_week"`
			TimeRanges []struct {
				Start string `yaml:"start"`
				End   string `yaml:"end"`
			} `yaml:"time_ranges"`
		} `yaml:"recurrence"`
	} `yaml:"schedule"`
}

// LoadFile reads flag definitions from a YAML file. Each definition is
// validated; definitions without an explicit ID get a fresh one. The
// result is suitable for seeding a store, e.g.:
//
//	flags, err := feature.LoadFile(cfg.DefinitionsFile)
//	store, err := feature.NewMemoryStore(flags...)
func LoadFile(path string) ([]*FeatureFlag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flag definitions: %w", err)
	}
	defer f.Close()
	return LoadReader(f)
}

// LoadReader parses flag definitions from YAML.
func LoadReader(r io.Reader) ([]*FeatureFlag, error) {
	var doc flagsFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse flag definitions: %w", err)
	}

	flags := make([]*FeatureFlag, 0, len(doc.Flags))
	var errs []error
	for _, def := range doc.Flags {
		flag := def.toFlag()
		if err := flag.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("flag %q: %w", def.Key, err))
			continue
		}
		flags = append(flags, flag)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return flags, nil
}

// SeedStore creates every flag in the store, skipping keys that already
// exist so re-seeding an initialized store is safe.
func SeedStore(ctx context.Context, store Store, flags []*FeatureFlag) error {
	for _, flag := range flags {
		if err := store.Create(ctx, flag); err != nil {
			if errors.Is(err, ErrFlagKeyExists) {
				continue
			}
			return err
		}
	}
	return nil
}

func (d fileFlag) toFlag() *FeatureFlag {
	flag := &FeatureFlag{
		ID:           uuid.New(),
		Key:          d.Key,
		Name:         d.Name,
		Description:  d.Description,
		Type:         FlagType(d.Type),
		Enabled:      d.Enabled,
		DefaultValue: d.DefaultValue,
		Percentage:   d.Percentage,
		Environments: d.Environments,
	}
	if d.UserTargeting != nil {
		flag.UserTargeting = &UserTargeting{
			UserIDs:    d.UserTargeting.UserIDs,
			UserRoles:  d.UserTargeting.UserRoles,
			UserEmails: d.UserTargeting.UserEmails,
		}
	}
	if d.OrganizationTargeting != nil {
		flag.OrganizationTargeting = &OrganizationTargeting{
			OrganizationIDs:   d.OrganizationTargeting.OrganizationIDs,
			OrganizationTypes: d.OrganizationTargeting.OrganizationTypes,
		}
	}
	if d.Schedule != nil {
		schedule := &Schedule{
			StartDate: d.Schedule.StartDate,
			EndDate:   d.Schedule.EndDate,
		}
		if d.Schedule.Recurrence != nil {
			rec := &Recurrence{
				Type:       RecurrenceType(d.Schedule.Recurrence.Type),
				DaysOfWeek: d.Schedule.Recurrence.DaysOfWeek,
			}
			for _, tr := range d.Schedule.Recurrence.TimeRanges {
				rec.TimeRanges = append(rec.TimeRanges, TimeRange{Start: tr.Start, End: tr.End})
			}
			schedule.Recurrence = rec
		}
		flag.Schedule = schedule
	}
	return flag
}
