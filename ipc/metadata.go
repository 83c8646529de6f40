package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"goa.design/toolcore/ident"
)

// socketMetadata is the JSON shape written to the metadata file (spec
// §3 "Socket metadata file", §6).
type socketMetadata struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

// MetadataPath returns the path of the socket metadata file for a
// conversation under codexHome (spec §4.5: "<codex_home>/live/<conversation_id>.json").
func MetadataPath(codexHome string, conversationID ident.ConversationID) string {
	return filepath.Join(codexHome, "live", string(conversationID)+".json")
}

// writeMetadata creates the parent directory if missing and writes the
// socket metadata file (spec §4.5 "Server start").
func writeMetadata(path string, host string, port uint16) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metadata directory: %w", err)
	}
	data, err := json.Marshal(socketMetadata{Host: host, Port: port})
	if err != nil {
		return fmt.Errorf("marshal socket metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write socket metadata: %w", err)
	}
	return nil
}

// ReadMetadata reads and parses the socket metadata file at path into a
// dialable address (spec §4.5 "Address resolution": host is parsed as an
// IP address, no DNS).
func ReadMetadata(path string) (*net.TCPAddr, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read socket metadata: %w", err)
	}
	var m socketMetadata
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse socket metadata: %w", err)
	}
	ip := net.ParseIP(m.Host)
	if ip == nil {
		return nil, fmt.Errorf("socket metadata host %q is not an IP address", m.Host)
	}
	return &net.TCPAddr{IP: ip, Port: int(m.Port)}, nil
}
