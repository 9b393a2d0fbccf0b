// Package epg provides parsing and now/next resolution for XMLTV program
// guide data.
package epg

import (
	"encoding/xml"
	"fmt"
	"io"
)

// TV represents the root element of an XMLTV document.
type TV struct {
	XMLName  xml.Name    `xml:"tv"`
	Channels []Channel   `xml:"channel"`
	Programs []Programme `xml:"programme"`
}

// Channel represents a channel entry in the guide.
type Channel struct {
	ID          string `xml:"id,attr"`
	DisplayName string `xml:"display-name"`
	Icon        *Icon  `xml:"icon"`
}

// Icon represents an icon reference in the guide.
type Icon struct {
	Src string `xml:"src,attr"`
}

// Programme represents a single show in the guide. Start and Stop carry the
// raw XMLTV timestamps (14 digits plus a UTC offset, e.g. "20240108100000 +0000").
type Programme struct {
	Channel     string `xml:"channel,attr"`
	Start       string `xml:"start,attr"`
	Stop        string `xml:"stop,attr"`
	Title       string `xml:"title"`
	Description string `xml:"desc"`
	Icon        *Icon  `xml:"icon"`
}

// ParseStream parses XMLTV data from an io.Reader.
func ParseStream(reader io.Reader) (*TV, error) {
	decoder := xml.NewDecoder(reader)

	var tv TV
	if err := decoder.Decode(&tv); err != nil {
		return nil, fmt.Errorf("failed to parse XMLTV document: %w", err)
	}

	return &tv, nil
}
