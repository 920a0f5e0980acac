// Package flow classifies the endpoints of tab-separated flow records as
// local or remote and counts the local ones.
//
// Record fields: timestamp, source name, source ip, source port,
// destination ip, destination port, protocol, session end time, service
// name, sent bytes, received bytes, sent packets, received packets. Only
// the addresses, the destination port and the protocol are used.
package flow

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
)

const (
	ProtoTCP = "tcp"
	ProtoUDP = "udp"
)

const (
	fieldSrcIP   = 2
	fieldDstIP   = 4
	fieldDstPort = 5
	fieldProto   = 6
)

// Matcher decides whether an address is local.
type Matcher interface {
	Contains(address string) bool
}

// Classifier counts the local endpoints of flow records.
type Classifier struct {
	local Matcher
}

// NewClassifier returns a Classifier using local to recognize local
// addresses.
func NewClassifier(local Matcher) *Classifier {
	return &Classifier{local: local}
}

// Classify reads flow records from r until EOF or until ctx is done.
// Flows with no local endpoint, an unknown protocol, or too few fields
// are skipped, as are malformed rows. A local source is counted on port 0,
// a local destination on its destination port.
func (c *Classifier) Classify(ctx context.Context, r io.Reader) (*Hosts, error) {
	rdr := csv.NewReader(r)
	rdr.Comma = '\t'
	rdr.FieldsPerRecord = -1
	rdr.LazyQuotes = true
	rdr.ReuseRecord = true

	hosts := NewHosts()
	var skipped int
	for {
		if err := ctx.Err(); err != nil {
			return hosts, err
		}
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return hosts, err
		}
		c.record(hosts, rec)
	}

	if skipped > 0 {
		log.Warn("Skipped malformed flow records", "count", skipped)
	}
	return hosts, nil
}

func (c *Classifier) record(hosts *Hosts, rec []string) {
	if len(rec) <= fieldProto {
		return
	}
	src, dst := rec[fieldSrcIP], rec[fieldDstIP]
	srcLocal, dstLocal := c.local.Contains(src), c.local.Contains(dst)
	if !srcLocal && !dstLocal {
		return
	}

	var proto string
	switch rec[fieldProto] {
	case "6":
		proto = ProtoTCP
	case "17":
		proto = ProtoUDP
	default:
		return
	}
	dport, err := strconv.ParseUint(rec[fieldDstPort], 10, 16)
	if err != nil {
		dport = 0
	}

	if srcLocal {
		hosts.Insert(src, 0, proto)
	}
	if dstLocal {
		hosts.Insert(dst, uint16(dport), proto)
	}
}
