package services

import (
	"regexp"
	"strings"

	"voidstate/domain/config"
	"voidstate/domain/core/entities"
	"voidstate/domain/core/valueobjects"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-?\d{2}-?\d{4}\b`)
)

// SeedEchoes are replayed while no user echo has been stored yet.
var SeedEchoes = []string{
	"i feel like nobody understands",
	"sometimes the silence is comforting",
	"why does everything feel so heavy",
	"i just want to be heard",
	"the darkness is peaceful",
	"i hope tomorrow is better",
	"letting go is harder than holding on",
	"i miss who i used to be",
	"some things can't be unsaid",
	"the night knows my secrets",
	"i wonder if anyone else feels this way",
	"peace is all i want",
	"the quiet helps me think",
	"i'm still figuring things out",
	"some days are harder than others",
}

// Blocklist supplies the words that disqualify a thought from echoing.
type Blocklist interface {
	Words() []string
}

// StaticBlocklist is a fixed word list.
type StaticBlocklist []string

// Words implements Blocklist
func (b StaticBlocklist) Words() []string {
	return b
}

// EchoPolicy decides which thoughts may be replayed and picks replays.
type EchoPolicy struct {
	cfg       *config.DomainConfig
	blocklist Blocklist
	random    Random
}

// NewEchoPolicy creates an echo policy. A nil blocklist blocks nothing.
func NewEchoPolicy(cfg *config.DomainConfig, blocklist Blocklist, random Random) *EchoPolicy {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if blocklist == nil {
		blocklist = StaticBlocklist(nil)
	}
	if random == nil {
		random = SystemRandom()
	}
	return &EchoPolicy{cfg: cfg, blocklist: blocklist, random: random}
}

// Eligible reports whether the thought passes the word-count, length,
// blocklist and personal information checks. Duplicate detection needs the
// stored buffer and is handled by EchoBuffer.Append.
func (p *EchoPolicy) Eligible(t valueobjects.Thought) bool {
	if len(t.Words()) < p.cfg.MinWordsForEcho {
		return false
	}
	if t.Len() > p.cfg.MaxEchoLength {
		return false
	}
	if p.blocked(t.Text()) {
		return false
	}
	return !ContainsPersonalInfo(t.Text())
}

func (p *EchoPolicy) blocked(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range p.blocklist.Words() {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}

// ShouldEcho rolls the echo probability gate.
func (p *EchoPolicy) ShouldEcho() bool {
	return p.random.Float64() < p.cfg.EchoProbability
}

// Pick returns a uniformly chosen echo, substituting a seed when the buffer
// is empty so a fired gate never yields nothing.
func (p *EchoPolicy) Pick(buf *entities.EchoBuffer) string {
	if buf == nil || buf.Len() == 0 {
		return SeedEchoes[p.random.IntN(len(SeedEchoes))]
	}
	return buf.At(p.random.IntN(buf.Len()))
}

// ContainsPersonalInfo looks for email addresses, phone numbers and
// SSN-like digit groups.
func ContainsPersonalInfo(text string) bool {
	return emailPattern.MatchString(text) ||
		phonePattern.MatchString(text) ||
		ssnPattern.MatchString(text)
}
