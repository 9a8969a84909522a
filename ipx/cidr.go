package ipx

import (
	"bytes"
	"fmt"
	"net"
	"strings"

	"github.com/mikioh/ipaddr"
)

// CIDRParser parses CIDR blocks
type CIDRParser interface {
	Parse(cidr string) (Range, error)
}

type DefaultCIDRParser struct{}

func NewDefaultCIDRParser() *DefaultCIDRParser {
	return &DefaultCIDRParser{}
}

func (d DefaultCIDRParser) Parse(cidr string) (Range, error) {
	c, err := ipaddr.Parse(strings.TrimSpace(cidr))
	if err != nil {
		return Range{}, err
	}
	prefixes := c.List()
	notation := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		notation = append(notation, p.String())
	}
	return Range{
		CIDR:  strings.Join(notation, ","),
		Start: c.First().IP,
		End:   c.Last().IP,
	}, nil
}

// Range is a structure that holds the start and end of a range of IP Addresses.
type Range struct {
	CIDR  string
	Start net.IP
	End   net.IP
}

// InRange reports whether a given IP Address is within a range given, both ends included.
func (r Range) InRange(ipAddress net.IP) bool {
	ip, start, end := ipAddress.To16(), r.Start.To16(), r.End.To16()
	if ip == nil || start == nil || end == nil {
		return false
	}
	return bytes.Compare(ip, start) >= 0 && bytes.Compare(ip, end) <= 0
}

// String returns the canonical CIDR notation of the range.
func (r Range) String() string {
	return r.CIDR
}

// Ranges is an ordered list of address ranges.
type Ranges []Range

// Contains reports whether any of the ranges holds the given address.
func (rs Ranges) Contains(ipAddress net.IP) bool {
	for _, r := range rs {
		if r.InRange(ipAddress) {
			return true
		}
	}
	return false
}

// ParseList parses every CIDR block with the given parser.
// A nil parser falls back to DefaultCIDRParser.
func ParseList(p CIDRParser, blocks ...string) (Ranges, error) {
	if p == nil {
		p = DefaultCIDRParser{}
	}
	res := make(Ranges, 0, len(blocks))
	for _, b := range blocks {
		r, err := p.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR block %q: %w", b, err)
		}
		res = append(res, r)
	}
	return res, nil
}
