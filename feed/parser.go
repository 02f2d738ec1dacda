package feed

import (
	"bufio"
	"io"
	"strings"
)

// Parser extracts domain names from a feed body.
type Parser interface {
	Parse(r io.Reader) ([]string, error)
}

// HostfileParser parses hosts-file format: "0.0.0.0 domain".
type HostfileParser struct{}

func (p *HostfileParser) Parse(r io.Reader) ([]string, error) {
	return scanDomains(r, func(line string) string {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return ""
		}
		switch d := strings.ToLower(fields[1]); d {
		case "localhost", "localhost.localdomain", "broadcasthost", "local":
			return ""
		default:
			return d
		}
	})
}

// DomainListParser parses one-domain-per-line format.
type DomainListParser struct{}

func (p *DomainListParser) Parse(r io.Reader) ([]string, error) {
	return scanDomains(r, func(line string) string {
		if fields := strings.Fields(line); len(fields) > 0 {
			return strings.ToLower(fields[0])
		}
		return ""
	})
}

// ParserForFormat returns the parser for a feed format string.
func ParserForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "hostfile", "hosts":
		return &HostfileParser{}
	default:
		return &DomainListParser{}
	}
}

// scanDomains strips comments and blank lines, applies extract to the rest
// and returns the distinct results in first-seen order.
func scanDomains(r io.Reader, extract func(string) string) ([]string, error) {
	seen := make(map[string]struct{})
	var domains []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		domain := strings.TrimSuffix(extract(line), ".")
		if domain == "" {
			continue
		}
		if _, ok := seen[domain]; ok {
			continue
		}
		seen[domain] = struct{}{}
		domains = append(domains, domain)
	}
	return domains, scanner.Err()
}
