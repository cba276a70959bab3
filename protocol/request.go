package protocol

import (
	"strings"

	"github.com/wippyai/dllbridge/errors"
	"github.com/wippyai/dllbridge/signature"
)

const (
	// CommandCall is the only command the protocol knows.
	CommandCall = "call"
	// SignaturePrefix opens the signature block of a request.
	SignaturePrefix = "sig:"
)

// Request is a tokenized call line
type Request struct {
	Function  string
	Signature string
	Args      []string
}

// ParseRequest splits a request line into function name, signature text
// and argument tokens. It does not parse the signature itself.
func ParseRequest(line string) (*Request, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 || tokens[0] != CommandCall {
		return nil, errors.InvalidInput(errors.PhaseProtocol, "Command must start with 'call'")
	}
	if len(tokens) < 2 {
		return nil, errors.InvalidInput(errors.PhaseProtocol, "Missing function name")
	}

	req := &Request{Function: tokens[1]}
	if len(tokens) < 3 || !strings.HasPrefix(tokens[2], SignaturePrefix) {
		return nil, errors.New(errors.PhaseProtocol, errors.KindInvalidInput).
			Symbol(req.Function).
			Detail("No signature string provided").
			Build()
	}

	sig, end, ok := scanSignature(tokens[2:])
	if !ok {
		return nil, errors.New(errors.PhaseProtocol, errors.KindMalformed).
			Symbol(req.Function).
			Detail("Malformed signature; no '->' found").
			Build()
	}
	req.Signature = sig
	req.Args = tokens[2+end+1:]
	return req, nil
}

// scanSignature joins tokens with single spaces, after stripping the block
// prefix from the first one, until the text contains an arrow. When nothing
// follows the arrow inside its token, the next token is the result type and
// is consumed as well. It returns the text and the index of the last token
// consumed.
func scanSignature(tokens []string) (string, int, bool) {
	var b strings.Builder
	for i, tok := range tokens {
		if i == 0 {
			for strings.HasPrefix(tok, SignaturePrefix) {
				tok = tok[len(SignaturePrefix):]
			}
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)

		text := b.String()
		arrow := strings.LastIndex(text, signature.Arrow)
		if arrow < 0 {
			continue
		}
		if strings.TrimSpace(text[arrow+len(signature.Arrow):]) == "" && i+1 < len(tokens) {
			i++
			text += " " + tokens[i]
		}
		return text, i, true
	}
	return "", 0, false
}

// String renders the request as a protocol line without a terminator.
func (r *Request) String() string {
	var b strings.Builder
	b.WriteString(CommandCall)
	b.WriteByte(' ')
	b.WriteString(r.Function)
	b.WriteByte(' ')
	b.WriteString(SignaturePrefix)
	b.WriteString(r.Signature)
	for _, a := range r.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}
