// Package wire implements the hand-rolled JSON dialect spoken by the remote
// pricing service. The protocol has no formal schema and the server evolves
// independently, so decoding is a tolerant positional scan: absent or
// malformed fields degrade to zero values instead of failing, and the
// resolver layer treats an all-zero result as "could not confirm a discount".
package wire

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/noah-isme/pos-lane/internal/money"
)

// LineItem is one basket row as serialized on the wire.
type LineItem struct {
	ID        string
	Name      string
	Qty       int
	UnitPrice money.Money
	LineTotal money.Money
}

// BasketResult holds the response fields the client consumes.
type BasketResult struct {
	OriginalSubtotal   money.Money
	DiscountName       string
	DiscountPercentage float64
	DiscountAmount     money.Money
	DiscountedSubtotal money.Money
}

// EncodeBasketRequest builds the request body by direct concatenation with a
// fixed field order. Numbers are always formatted with two decimals,
// independent of locale, to match what the service parses.
func EncodeBasketRequest(items []LineItem, subtotal money.Money, discountName string) []byte {
	var sb strings.Builder
	sb.WriteByte('{')
	sb.WriteString(`"discountName":"`)
	sb.WriteString(escape(discountName))
	sb.WriteString(`","subtotal":`)
	sb.WriteString(subtotal.String())
	sb.WriteString(`,"items":[`)
	for i, it := range items {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(`{"id":"`)
		sb.WriteString(escape(it.ID))
		sb.WriteString(`","name":"`)
		sb.WriteString(escape(it.Name))
		sb.WriteString(`","qty":`)
		sb.WriteString(strconv.Itoa(it.Qty))
		sb.WriteString(`,"unitPrice":`)
		sb.WriteString(it.UnitPrice.String())
		sb.WriteString(`,"lineTotal":`)
		sb.WriteString(it.LineTotal.String())
		sb.WriteByte('}')
	}
	sb.WriteString(`]}`)
	return []byte(sb.String())
}

// DecodeBasketResponse scans the response body for the known keys. It never
// fails: missing keys yield zero values. When the server only returned a
// discountAmount, the discounted subtotal is derived from it.
func DecodeBasketResponse(body []byte) BasketResult {
	doc := string(body)
	var r BasketResult
	r.OriginalSubtotal = money.FromFloat(extractNumber(doc, "originalSubtotal"))
	if r.OriginalSubtotal.IsZero() {
		// older servers use the request key name
		r.OriginalSubtotal = money.FromFloat(extractNumber(doc, "subtotal"))
	}
	r.DiscountName = extractString(doc, "discountName")
	r.DiscountPercentage = extractNumber(doc, "discountPercentage")
	r.DiscountAmount = money.FromFloat(extractNumber(doc, "discountAmount"))
	r.DiscountedSubtotal = money.FromFloat(extractNumber(doc, "discountedSubtotal"))
	if r.DiscountedSubtotal.IsZero() && r.OriginalSubtotal > 0 {
		discounted := r.OriginalSubtotal.Sub(r.DiscountAmount)
		if discounted < 0 {
			discounted = 0
		}
		r.DiscountedSubtotal = discounted
	}
	return r
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// indexOfKey locates the quoted key anywhere in the document.
func indexOfKey(doc, key string) int {
	return strings.Index(doc, `"`+key+`"`)
}

// scanValue returns the raw token following the key's colon, or ("", false)
// when the key is absent. Quoted values are returned without their quotes;
// bare tokens run until ',', '}' or whitespace.
func scanValue(doc, key string) (string, bool) {
	keyPos := indexOfKey(doc, key)
	if keyPos < 0 {
		return "", false
	}
	colon := strings.IndexByte(doc[keyPos:], ':')
	if colon < 0 {
		return "", false
	}
	i := keyPos + colon + 1
	for i < len(doc) && unicode.IsSpace(rune(doc[i])) {
		i++
	}
	if i >= len(doc) {
		return "", false
	}
	if doc[i] == '"' {
		start := i + 1
		end := start
		for end < len(doc) {
			if doc[end] == '"' && doc[end-1] != '\\' {
				break
			}
			end++
		}
		if end >= len(doc) {
			return "", false
		}
		return doc[start:end], true
	}
	start := i
	for i < len(doc) {
		c := doc[i]
		if c == ',' || c == '}' || unicode.IsSpace(rune(c)) {
			break
		}
		i++
	}
	return strings.TrimSpace(doc[start:i]), true
}

func extractNumber(doc, key string) float64 {
	token, ok := scanValue(doc, key)
	if !ok || token == "" {
		return 0
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return value
}

func extractString(doc, key string) string {
	token, ok := scanValue(doc, key)
	if !ok {
		return ""
	}
	token = strings.ReplaceAll(token, `\"`, `"`)
	return strings.ReplaceAll(token, `\\`, `\`)
}
