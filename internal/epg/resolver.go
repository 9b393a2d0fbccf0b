package epg

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// timestampLayout matches XMLTV timestamps: 14 numeric digits followed
	// by a signed 4-digit UTC offset.
	timestampLayout = "20060102150405 -0700"

	// DisplayTimeLayout is the format used for program times in API
	// responses, rendered in the display timezone without an offset.
	DisplayTimeLayout = "2006-01-02 15:04:05"

	// placeholderText substitutes a missing title or description.
	placeholderText = "To Be Announced"
)

// ErrChannelNotFound is returned when no channel entry matches the requested
// identifier.
var ErrChannelNotFound = errors.New("channel not found")

// ChannelInfo is the resolved metadata for a channel.
type ChannelInfo struct {
	ID   string
	Name string
	Icon string
}

// Program is a guide entry with its times normalized to the display timezone.
// Icon is empty when the feed carries no icon for the entry.
type Program struct {
	Title string
	Desc  string
	Start time.Time
	Stop  time.Time
	Icon  string
}

// Result is the outcome of a now/next resolution. Current is nil when no
// program window contains the reference instant; Upcoming is nil when no
// program starts after it.
type Result struct {
	Channel  ChannelInfo
	Current  *Program
	Upcoming *Program
}

// Guide answers channel and program lookups over a parsed document. The
// current implementation scans the document linearly on every call, which is
// adequate at typical feed sizes; swapping in a pre-built index only requires
// another implementation of this interface.
type Guide interface {
	// Channel returns the metadata for the given channel ID, or false if
	// no well-formed entry matches.
	Channel(id string) (ChannelInfo, bool)
	// Programs returns the channel's programs sorted by start time
	// ascending. The sort is stable, so entries with equal start times
	// keep their feed order.
	Programs(id string) []Program
}

// Resolver locates the current and upcoming programs for a channel.
type Resolver struct {
	location *time.Location
	logger   *logrus.Logger
}

// NewResolver creates a resolver that renders program times in the given
// display timezone.
func NewResolver(location *time.Location, logger *logrus.Logger) *Resolver {
	return &Resolver{
		location: location,
		logger:   logger,
	}
}

// Resolve finds the channel matching channelID in the parsed document and
// determines its current and upcoming programs relative to now. The now
// instant is used for every comparison, so a program cannot flip between
// not-current and current mid-resolution. Returns ErrChannelNotFound when no
// channel entry matches; a matched channel with zero programs resolves
// successfully with Current and Upcoming both nil.
func (r *Resolver) Resolve(tv *TV, channelID string, now time.Time) (*Result, error) {
	return r.resolve(&documentGuide{tv: tv, resolver: r}, channelID, now)
}

func (r *Resolver) resolve(guide Guide, channelID string, now time.Time) (*Result, error) {
	info, ok := guide.Channel(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	programs := guide.Programs(channelID)
	result := &Result{Channel: info}

	// Current: first program whose half-open window [start, stop) contains
	// now. A zero-width window can never match.
	for i := range programs {
		program := &programs[i]
		if !program.Start.After(now) && now.Before(program.Stop) {
			result.Current = program
			if i+1 < len(programs) {
				result.Upcoming = &programs[i+1]
			}
			return result, nil
		}
	}

	// Nothing airing right now: Upcoming is the nearest program starting
	// strictly after now, if any.
	for i := range programs {
		if programs[i].Start.After(now) {
			result.Upcoming = &programs[i]
			break
		}
	}

	return result, nil
}

// documentGuide implements Guide with linear scans over a parsed document.
type documentGuide struct {
	tv       *TV
	resolver *Resolver
}

func (g *documentGuide) Channel(id string) (ChannelInfo, bool) {
	for _, channel := range g.tv.Channels {
		if channel.ID != id {
			continue
		}

		// A matching entry missing its display name or icon is skipped,
		// not fatal; a later well-formed entry can still match.
		if channel.DisplayName == "" || channel.Icon == nil {
			g.resolver.logger.WithField("channel", channel.ID).Warn("Skipping malformed channel entry")
			continue
		}

		return ChannelInfo{
			ID:   channel.ID,
			Name: channel.DisplayName,
			Icon: channel.Icon.Src,
		}, true
	}

	return ChannelInfo{}, false
}

func (g *documentGuide) Programs(id string) []Program {
	var programs []Program

	for _, programme := range g.tv.Programs {
		if programme.Channel != id {
			continue
		}

		start, err := g.resolver.parseTimestamp(programme.Start)
		if err != nil {
			g.resolver.logger.WithFields(logrus.Fields{
				"channel": id,
				"start":   programme.Start,
			}).Warn("Skipping program with unparseable start time")
			continue
		}

		stop, err := g.resolver.parseTimestamp(programme.Stop)
		if err != nil {
			g.resolver.logger.WithFields(logrus.Fields{
				"channel": id,
				"stop":    programme.Stop,
			}).Warn("Skipping program with unparseable stop time")
			continue
		}

		program := Program{
			Title: programme.Title,
			Desc:  programme.Description,
			Start: start,
			Stop:  stop,
		}
		if program.Title == "" {
			program.Title = placeholderText
		}
		if program.Desc == "" {
			program.Desc = placeholderText
		}
		if programme.Icon != nil {
			program.Icon = programme.Icon.Src
		}

		programs = append(programs, program)
	}

	// Sort on the normalized instants, not the raw timestamp strings. The
	// stable sort keeps feed order for identical start times.
	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].Start.Before(programs[j].Start)
	})

	return programs
}

// parseTimestamp parses an XMLTV timestamp and converts it to the display
// timezone.
func (r *Resolver) parseTimestamp(value string) (time.Time, error) {
	parsed, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return parsed.In(r.location), nil
}
