package flow

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var serviceRegex = regexp.MustCompile(`^([a-zA-Z0-9\-]+)\s+(\d+)/(tcp|udp)\s*`)

// Services maps "port/proto" to an upper-cased service name.
type Services map[string]string

// Name returns the service name for port/proto, or "port/proto" when unknown.
func (s Services) Name(port uint16, proto string) string {
	key := fmt.Sprintf("%d/%s", port, proto)
	if name, ok := s[key]; ok {
		return name
	}
	return key
}

// ReadServices parses /etc/services formatted data.
func ReadServices(r io.Reader) (Services, error) {
	services := make(Services)

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		m := serviceRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		services[m[2]+"/"+m[3]] = strings.ToUpper(m[1])
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

// LoadServices reads the services file at path.
func LoadServices(path string) (Services, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open services file %s: %w", path, err)
	}
	defer f.Close()

	services, err := ReadServices(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read services file %s: %w", path, err)
	}
	return services, nil
}
