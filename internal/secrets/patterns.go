package secrets

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	passwordMinimumLengthConstant = 6
	passwordMaximumLengthConstant = 64
	patternCompileErrorTemplate   = "invalid secret pattern %q: %w"
)

// Pattern pairs a regular expression with the message reported when it matches.
type Pattern struct {
	Expression *regexp.Regexp
	Message    string
}

// PatternDefinition is the configurable form of a Pattern.
type PatternDefinition struct {
	Pattern string `mapstructure:"pattern"`
	Message string `mapstructure:"message"`
}

// DefaultPatterns returns the built-in table in evaluation order. The same table is
// applied to leaf values and to the key that holds them.
func DefaultPatterns() []Pattern {
	return []Pattern{
		{Expression: regexp.MustCompile(`BEGIN PRIVATE`), Message: "Cryptographic Key"},
		{Expression: regexp.MustCompile(`BEGIN RSA`), Message: "Cryptographic Key (RSA)"},
		{Expression: regexp.MustCompile(`(?i)_password$`), Message: "referenceId has password in it's name"},
		{Expression: regexp.MustCompile(`(?i)_secret$`), Message: "referenceId has secret in it's name"},
		{Expression: regexp.MustCompile(`(?i)^passphrase$`), Message: "Pass Phrase"},
		{Expression: regexp.MustCompile(`(?i)^privkey$`), Message: "Private Key"},
	}
}

// CompilePatterns turns configured definitions into patterns.
func CompilePatterns(definitions []PatternDefinition) ([]Pattern, error) {
	compiled := make([]Pattern, 0, len(definitions))
	for _, definition := range definitions {
		expression, compileError := regexp.Compile(definition.Pattern)
		if compileError != nil {
			return nil, fmt.Errorf(patternCompileErrorTemplate, definition.Pattern, compileError)
		}
		compiled = append(compiled, Pattern{Expression: expression, Message: definition.Message})
	}
	return compiled, nil
}

var (
	nonSecretSuffixes = []string{".edu", ".com"}
	nonSecretPrefixes = []string{"http", "jdbc", "ssh-rsa"}

	passwordDigitExpression  = regexp.MustCompile(`\d`)
	passwordLetterExpression = regexp.MustCompile(`[a-z]`)
	passwordSymbolExpression = regexp.MustCompile(`[!@#$%^&*]`)
)

// LooksLikePassword reports whether text has the shape of a password: between 6
// and 64 characters holding a digit, a letter, and one of !@#$%^&*. Host names,
// URLs, JDBC connection strings, and SSH public keys are never passwords.
func LooksLikePassword(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, suffix := range nonSecretSuffixes {
		if strings.HasSuffix(normalized, suffix) {
			return false
		}
	}
	for _, prefix := range nonSecretPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return false
		}
	}

	length := utf8.RuneCountInString(normalized)
	if length < passwordMinimumLengthConstant || length > passwordMaximumLengthConstant {
		return false
	}
	return passwordDigitExpression.MatchString(normalized) &&
		passwordLetterExpression.MatchString(normalized) &&
		passwordSymbolExpression.MatchString(normalized)
}
