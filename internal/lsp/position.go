package lsp

import (
	"unicode/utf16"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/thomas-vilte/issuels/internal/models"
)

// LSP columns count UTF-16 code units; the completion core counts runes.

// utf16ToRune converts a UTF-16 column of line to a rune column. Columns past
// the end of the line are clamped.
func utf16ToRune(line string, col int) int {
	units, runes := 0, 0
	for _, r := range line {
		if units >= col {
			return runes
		}
		units += utf16.RuneLen(r)
		if units > col {
			// col points inside a surrogate pair
			return runes
		}
		runes++
	}
	return runes
}

// runeToUTF16 converts a rune column of line to a UTF-16 column.
func runeToUTF16(line string, col int) int {
	units, runes := 0, 0
	for _, r := range line {
		if runes >= col {
			break
		}
		units += utf16.RuneLen(r)
		runes++
	}
	return units
}

func fromProtocolPosition(doc models.Document, p protocol.Position) models.Position {
	line := int(p.Line)
	return models.Position{
		Line:      line,
		Character: utf16ToRune(doc.LineText(line), int(p.Character)),
	}
}

func toProtocolPosition(doc models.Document, p models.Position) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(p.Line),
		Character: protocol.UInteger(runeToUTF16(doc.LineText(p.Line), p.Character)),
	}
}

func toProtocolRange(doc models.Document, r models.Range) protocol.Range {
	return protocol.Range{
		Start: toProtocolPosition(doc, r.Start),
		End:   toProtocolPosition(doc, r.End),
	}
}
