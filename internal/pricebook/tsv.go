package pricebook

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/pos-lane/internal/money"
)

// ParseTSV reads `id<TAB>name<TAB>price` lines. Lines without exactly three
// fields are skipped; fields are trimmed; an unparseable price aborts the
// load.
func ParseTSV(r io.Reader) ([]Product, error) {
	sc := bufio.NewScanner(r)
	var products []Product
	lineNo := 0
	for sc.Scan() {
		lineNo++
		parts := strings.Split(sc.Text(), "\t")
		if len(parts) != 3 {
			continue
		}
		price, err := money.Parse(strings.TrimSpace(parts[2]))
		if err != nil {
			return nil, fmt.Errorf("pricebook tsv line %d: %w", lineNo, err)
		}
		products = append(products, Product{
			ID:    strings.TrimSpace(parts[0]),
			Name:  strings.TrimSpace(parts[1]),
			Price: price,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read pricebook tsv: %w", err)
	}
	return products, nil
}
