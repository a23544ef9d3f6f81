package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Genesis is the YAML document applied to an empty host on first start.
type Genesis struct {
	ChainID       string                       `yaml:"chain_id"`
	GenesisTime   string                       `yaml:"genesis_time"`
	InitialHeight uint64                       `yaml:"initial_height"`
	Balances      map[string]map[string]string `yaml:"balances"` // addr -> denom -> amount
	Contracts     []GenesisContract            `yaml:"contracts"`

	genesisTimestamp time.Time
}

// GenesisContract is instantiated in file order. String values of the form
// "$label" inside Msg resolve to the address of an earlier contract.
type GenesisContract struct {
	Label string                 `yaml:"label"`
	Code  string                 `yaml:"code"`
	Admin string                 `yaml:"admin"`
	Msg   map[string]interface{} `yaml:"msg"`
	Funds map[string]string      `yaml:"funds"`
}

// Balance is one parsed genesis allocation.
type Balance struct {
	Address string
	Denom   string
	Amount  *big.Int
}

func LoadGenesis(path string) (*Genesis, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis %q: %w", path, err)
	}
	return ParseGenesis(raw)
}

func ParseGenesis(raw []byte) (*Genesis, error) {
	var g Genesis
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, fmt.Errorf("decode genesis: %w", err)
	}
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &g, nil
}

func (g *Genesis) GenesisTimestamp() time.Time { return g.genesisTimestamp }

func (g *Genesis) validate() error {
	ts, err := parseGenesisTime(g.GenesisTime)
	if err != nil {
		return err
	}
	g.genesisTimestamp = ts
	if g.InitialHeight == 0 {
		g.InitialHeight = 1
	}
	for addr, coins := range g.Balances {
		for denom, amount := range coins {
			if _, err := parseAmountString(amount); err != nil {
				return fmt.Errorf("balances[%s][%s]: %w", addr, denom, err)
			}
		}
	}
	seen := make(map[string]struct{}, len(g.Contracts))
	for i, c := range g.Contracts {
		if strings.TrimSpace(c.Label) == "" || strings.TrimSpace(c.Code) == "" {
			return fmt.Errorf("contracts[%d]: label and code are required", i)
		}
		if _, dup := seen[c.Label]; dup {
			return fmt.Errorf("contracts[%d]: duplicate label %q", i, c.Label)
		}
		seen[c.Label] = struct{}{}
		for denom, amount := range c.Funds {
			if _, err := parseAmountString(amount); err != nil {
				return fmt.Errorf("contracts[%d].funds[%s]: %w", i, denom, err)
			}
		}
	}
	return nil
}

// SortedBalances flattens the allocations ordered by address then denom.
func (g *Genesis) SortedBalances() []Balance {
	var out []Balance
	for addr, coins := range g.Balances {
		for denom, amount := range coins {
			parsed, _ := parseAmountString(amount)
			out = append(out, Balance{Address: addr, Denom: denom, Amount: parsed})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Denom < out[j].Denom
	})
	return out
}

// SortedFunds returns the contract funds ordered by denom.
func (c GenesisContract) SortedFunds() []Balance {
	out := make([]Balance, 0, len(c.Funds))
	for denom, amount := range c.Funds {
		parsed, _ := parseAmountString(amount)
		out = append(out, Balance{Denom: denom, Amount: parsed})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Denom < out[j].Denom })
	return out
}

// MsgJSON encodes Msg as JSON after resolving "$label" references against
// addrs.
func (c GenesisContract) MsgJSON(addrs map[string]string) ([]byte, error) {
	if c.Msg == nil {
		return []byte(`{}`), nil
	}
	resolved, err := resolve(c.Msg, addrs)
	if err != nil {
		return nil, fmt.Errorf("contract %q: %w", c.Label, err)
	}
	return json.Marshal(resolved)
}

func resolve(v interface{}, addrs map[string]string) (interface{}, error) {
	switch val := v.(type) {
	case string:
		if !strings.HasPrefix(val, "$") {
			return val, nil
		}
		addr, ok := addrs[strings.TrimPrefix(val, "$")]
		if !ok {
			return nil, fmt.Errorf("unknown contract reference %q", val)
		}
		return addr, nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			r, err := resolve(item, addrs)
			if err != nil {
				return nil, err
			}
			out[k] = r
		}
		return out, nil
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			r, err := resolve(item, addrs)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = r
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			r, err := resolve(item, addrs)
			if err != nil {
				return nil, err
			}
			out[i] = r
		}
		return out, nil
	}
	return v, nil
}

func parseAmountString(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}

func parseGenesisTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("genesis_time must be provided")
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("invalid genesis_time %q", value)
}
