package ecrecover

import (
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// SignatureParser loads recovery requests from a source.
type SignatureParser interface {
	// ParseRequests parses requests from a source and returns them.
	ParseRequests(source string) ([]*Request, error)
}

// Fields names the record fields holding each part of a request.
// Empty names fall back to the defaults shown.
type Fields struct {
	Digest    string // default: "digest"
	Message   string // default: "message", hashed when digest is absent
	V         string // default: "v"
	R         string // default: "r"
	S         string // default: "s"
	Signature string // default: "signature", compact r || s || v used when v/r/s are absent
	Signer    string // default: "signer"
}

func (f Fields) withDefaults() Fields {
	def := func(name, fallback string) string {
		if name == "" {
			return fallback
		}
		return name
	}
	return Fields{
		Digest:    def(f.Digest, "digest"),
		Message:   def(f.Message, "message"),
		V:         def(f.V, "v"),
		R:         def(f.R, "r"),
		S:         def(f.S, "s"),
		Signature: def(f.Signature, "signature"),
		Signer:    def(f.Signer, "signer"),
	}
}

// JSONParser parses requests from JSON files.
type JSONParser struct {
	Fields Fields
}

// ParseRequests parses requests from a JSON file.
//
// Expected format:
//
//	[
//	  {"digest": "0x...", "v": 27, "r": "0x...", "s": "0x...", "signer": "0x..."},
//	  {"message": "...", "signature": "0x..."}
//	]
func (p *JSONParser) ParseRequests(jsonFile string) ([]*Request, error) {
	file, err := os.Open(jsonFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.UseNumber()

	var items []map[string]interface{}
	if err := decoder.Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	fields := p.Fields.withDefaults()
	requests := make([]*Request, 0, len(items))
	for i, item := range items {
		record := make(map[string]string, len(item))
		for k, v := range item {
			s, err := stringValue(v)
			if err != nil {
				return nil, fmt.Errorf("record %d: field %s: %w", i, k, err)
			}
			record[k] = s
		}
		req, err := buildRequest(record, fields)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// CSVParser parses requests from CSV files with a header row.
type CSVParser struct {
	Fields Fields
}

// ParseRequests parses requests from a CSV file.
func (p *CSVParser) ParseRequests(csvFile string) ([]*Request, error) {
	file, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fields := p.Fields.withDefaults()
	requests := make([]*Request, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) && row[i] != "" {
				record[strings.TrimSpace(col)] = row[i]
			}
		}
		req, err := buildRequest(record, fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func buildRequest(record map[string]string, fields Fields) (*Request, error) {
	req := &Request{}

	if d, ok := record[fields.Digest]; ok {
		digest, err := parseWordValue(d)
		if err != nil {
			return nil, fmt.Errorf("failed to parse digest: %w", err)
		}
		req.Digest = digest
	} else if msg, ok := record[fields.Message]; ok {
		req.Digest = HashMessage([]byte(msg))
	} else {
		return nil, fmt.Errorf("missing %s or %s field", fields.Digest, fields.Message)
	}

	if sig, ok := record[fields.Signature]; ok {
		b, err := hexBytes(sig)
		if err != nil {
			return nil, fmt.Errorf("failed to parse signature: %w", err)
		}
		if req.Signature, err = ParseCompactSignature(b); err != nil {
			return nil, err
		}
	} else {
		for _, name := range []string{fields.V, fields.R, fields.S} {
			if _, ok := record[name]; !ok {
				return nil, fmt.Errorf("missing %s field", name)
			}
		}
		v, err := parseV(record[fields.V])
		if err != nil {
			return nil, fmt.Errorf("failed to parse v: %w", err)
		}
		r, err := parseWordValue(record[fields.R])
		if err != nil {
			return nil, fmt.Errorf("failed to parse r: %w", err)
		}
		s, err := parseWordValue(record[fields.S])
		if err != nil {
			return nil, fmt.Errorf("failed to parse s: %w", err)
		}
		req.Signature = Signature{V: v, R: r, S: s}
	}

	if signer, ok := record[fields.Signer]; ok {
		if !common.IsHexAddress(signer) {
			return nil, fmt.Errorf("invalid signer address: %s", signer)
		}
		addr := common.HexToAddress(signer)
		req.Signer = &addr
	}
	return req, nil
}

// stringValue flattens a decoded JSON value to its textual form.
func stringValue(val interface{}) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case json.Number:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', 0, 64), nil
	default:
		return "", fmt.Errorf("unsupported type: %T", val)
	}
}

// parseWordValue parses a 32-byte word from 0x-prefixed hex, plain decimal or bare hex.
func parseWordValue(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") && isDecimal(s) {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return common.Hash{}, fmt.Errorf("invalid number format: %s", s)
		}
		if n.BitLen() > 256 {
			return common.Hash{}, fmt.Errorf("value exceeds 256 bits: %s", s)
		}
		return common.BigToHash(n), nil
	}
	return ParseWord(s)
}

func parseV(s string) (uint8, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid v value: %w", err)
	}
	return uint8(v), nil
}

func hexBytes(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
