// Package snort3 provides the rule-ingestion core of a signature-based
// network intrusion detection system.
//
// The ingestor parses textual detection rules, canonicalises and
// deduplicates their headers and signatures, and indexes each accepted
// rule into port-keyed rule groups for the downstream packet-matching
// engine.
//
// # Basic Usage
//
// Create an ingestor and feed it rules:
//
//	ing, err := snort3.NewIngestor()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = ing.IngestRule(`alert tcp any any -> any 80 (sid:1; content:"GET";)`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ing.PrintStats(os.Stdout)
//
// # With Variables
//
// Named address and port variables resolve inside rule headers:
//
//	ing, err := snort3.NewIngestor(
//	    snort3.WithIPVar("HOME_NET", "[10.0.0.0/8,192.168.0.0/16]"),
//	    snort3.WithPortVar("HTTP_PORTS", "[80,8080]"),
//	)
package snort3

import (
	"fmt"
	"io"
	"strings"

	"github.com/snortt1/snort3/pkg/classify"
	"github.com/snortt1/snort3/pkg/ipvar"
	"github.com/snortt1/snort3/pkg/options"
	"github.com/snortt1/snort3/pkg/parser"
	"github.com/snortt1/snort3/pkg/rules"
)

// Re-export commonly used types so callers can import just
// "github.com/snortt1/snort3" without subpackages.
type (
	// Conf is the state of one ingestion session.
	Conf = parser.Conf

	// FastPatternConfig exposes the port-group indexer thresholds.
	FastPatternConfig = parser.FastPatternConfig

	// PortEntry is the per-rule debug record.
	PortEntry = parser.PortEntry

	// RuleType is the action a rule takes when it matches.
	RuleType = rules.RuleType
)

// Ingestor parses rules into an ingestion session.
type Ingestor struct {
	conf  *parser.Conf
	lists map[rules.RuleType]*rules.ListHead
}

// ingestorConfig holds ingestor configuration.
type ingestorConfig struct {
	classifications *classify.Table
	fastPattern     parser.FastPatternConfig
	confErrorOut    bool
	instanceMax     int
	soResolver      options.SOResolver
	warnWriter      io.Writer
	ipVars          [][2]string
	portVars        [][2]string
}

// Option configures an Ingestor.
type Option func(*ingestorConfig)

// WithClassifications uses a custom classification table instead of the
// builtin set.
func WithClassifications(table *classify.Table) Option {
	return func(c *ingestorConfig) {
		c.classifications = table
	}
}

// WithFastPattern sets the port-group indexer thresholds.
func WithFastPattern(fp FastPatternConfig) Option {
	return func(c *ingestorConfig) {
		c.fastPattern = fp
	}
}

// WithStrictDuplicates promotes duplicate-rule warnings to fatal errors.
func WithStrictDuplicates() Option {
	return func(c *ingestorConfig) {
		c.confErrorOut = true
	}
}

// WithInstanceMax sizes each signature's per-instance state array.
// Default is 1.
func WithInstanceMax(n int) Option {
	return func(c *ingestorConfig) {
		c.instanceMax = n
	}
}

// WithSOResolver supplies option bodies for shared-object rules.
func WithSOResolver(r options.SOResolver) Option {
	return func(c *ingestorConfig) {
		c.soResolver = r
	}
}

// WithWarningWriter streams parse warnings to w as they are recorded.
func WithWarningWriter(w io.Writer) Option {
	return func(c *ingestorConfig) {
		c.warnWriter = w
	}
}

// WithIPVar defines a named address variable before ingestion starts.
func WithIPVar(name, spec string) Option {
	return func(c *ingestorConfig) {
		c.ipVars = append(c.ipVars, [2]string{name, spec})
	}
}

// WithPortVar defines a named port variable before ingestion starts.
func WithPortVar(name, spec string) Option {
	return func(c *ingestorConfig) {
		c.portVars = append(c.portVars, [2]string{name, spec})
	}
}

// NewIngestor creates an Ingestor with the given options.
func NewIngestor(opts ...Option) (*Ingestor, error) {
	config := &ingestorConfig{instanceMax: 1}
	for _, opt := range opts {
		opt(config)
	}

	conf := parser.NewConf(parser.Config{
		Classifications: config.classifications,
		FastPattern:     config.fastPattern,
		ConfErrorOut:    config.confErrorOut,
		InstanceMax:     config.instanceMax,
		SOResolver:      config.soResolver,
		WarnWriter:      config.warnWriter,
	})

	policy := conf.Policy()
	for _, v := range config.ipVars {
		if st := policy.IPVarTable.Define(v[0], v[1]); st != ipvar.Success {
			return nil, fmt.Errorf("defining ip variable %s: %s", v[0], st)
		}
	}
	for _, v := range config.portVars {
		if err := policy.PortVarTable.Define(v[0], v[1]); err != nil {
			return nil, fmt.Errorf("defining port variable: %w", err)
		}
	}

	return &Ingestor{
		conf:  conf,
		lists: make(map[rules.RuleType]*rules.ListHead),
	}, nil
}

// listFor returns the action list a rule type feeds, creating it on first
// use so identical actions share one list head.
func (i *Ingestor) listFor(t rules.RuleType) *rules.ListHead {
	if lh, ok := i.lists[t]; ok {
		return lh
	}
	lh := &rules.ListHead{Name: t.String(), Type: t}
	i.lists[t] = lh
	return lh
}

// IngestRule processes one rule. A rule beginning with '(' is a builtin
// rule with the assumed header 'tcp any any <> any any'; anything else
// must lead with an action token. The first fatal parse error aborts
// ingestion.
func (i *Ingestor) IngestRule(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	if strings.HasPrefix(text, "(") {
		return i.conf.ParseRule(text, rules.Alert, i.listFor(rules.Alert))
	}

	action := text
	rest := ""
	if idx := strings.IndexAny(text, " \t"); idx >= 0 {
		action, rest = text[:idx], text[idx+1:]
	}

	ruleType, ok := rules.ParseRuleType(action)
	if !ok {
		return fmt.Errorf("unknown rule action: %s", action)
	}

	return i.conf.ParseRule(strings.TrimSpace(rest), ruleType, i.listFor(ruleType))
}

// IngestRules processes rules in order, stopping at the first error.
func (i *Ingestor) IngestRules(ruleTexts []string) error {
	for _, text := range ruleTexts {
		if err := i.IngestRule(text); err != nil {
			return err
		}
	}
	return nil
}

// Conf exposes the underlying session for group and signature inspection.
func (i *Ingestor) Conf() *parser.Conf { return i.conf }

// RuleCount returns the total number of accepted rules.
func (i *Ingestor) RuleCount() int { return i.conf.RuleCnt() }

// Warnings returns the parse warnings recorded so far.
func (i *Ingestor) Warnings() []string { return i.conf.Warnings() }

// PrintStats writes the ingestion summary to w.
func (i *Ingestor) PrintStats(w io.Writer) { i.conf.PrintStats(w) }
