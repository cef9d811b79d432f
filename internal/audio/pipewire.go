package audio

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// PipeWire queries the PipeWire graph through pw-link.
type PipeWire struct {
	// listOutput runs the listing command; replaced in tests.
	listOutput func() ([]byte, error)
}

// NewPipeWire creates a new PipeWire instance
func NewPipeWire() *PipeWire {
	return &PipeWire{
		listOutput: func() ([]byte, error) {
			return exec.Command("pw-link", "-o").Output()
		},
	}
}

// ListPorts returns all output ports, i.e. everything that can be recorded from.
func (pw *PipeWire) ListPorts() ([]string, error) {
	output, err := pw.listOutput()
	if err != nil {
		return nil, fmt.Errorf("failed to list PipeWire ports: %w", err)
	}
	return parsePortList(string(output)), nil
}

// ListNodes returns the distinct node names owning the output ports, in
// first-seen order. These are the names pw-record accepts as --target.
func (pw *PipeWire) ListNodes() ([]string, error) {
	ports, err := pw.ListPorts()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var nodes []string
	for _, port := range ports {
		node, _ := SplitPort(port)
		if node == "" || seen[node] {
			continue
		}
		seen[node] = true
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// ValidatePort checks that source names an existing node or port, and that
// the name is not ambiguous.
func (pw *PipeWire) ValidatePort(source string) error {
	if source == "" {
		return nil
	}

	ports, err := pw.ListPorts()
	if err != nil {
		return err
	}

	matches := findSourceMatches(source, ports)
	if len(matches) == 0 {
		slog.Debug("Capture source not found", "source", source, "ports", len(ports))
		return fmt.Errorf("port not found: %s", source)
	}

	if duplicates := findPortDuplicatesInList(source, ports); len(duplicates) > 1 {
		return fmt.Errorf("duplicate sources detected for '%s': %v. Please close conflicting applications", source, duplicates)
	}
	return nil
}

// parsePortList extracts port names from pw-link output, skipping headers and
// the indented link lines.
func parsePortList(output string) []string {
	var ports []string
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Input ports:") || strings.HasPrefix(line, "Output ports:") {
			continue
		}
		ports = append(ports, line)
	}
	return ports
}

// SplitPort splits "node:port" at the last colon. Node names may themselves
// contain colons.
func SplitPort(port string) (node, name string) {
	idx := strings.LastIndex(port, ":")
	if idx == -1 {
		return strings.TrimSpace(port), ""
	}
	return strings.TrimSpace(port[:idx]), strings.TrimSpace(port[idx+1:])
}

// findSourceMatches returns the ports equal to source or owned by a node named source.
func findSourceMatches(source string, ports []string) []string {
	var matches []string
	for _, port := range ports {
		node, _ := SplitPort(port)
		if port == source || node == source {
			matches = append(matches, port)
		}
	}
	return matches
}

// findPortDuplicatesInList finds all ports with exactly the same name
func findPortDuplicatesInList(portName string, allPorts []string) []string {
	var duplicates []string
	for _, port := range allPorts {
		if port == portName {
			duplicates = append(duplicates, port)
		}
	}
	return duplicates
}
