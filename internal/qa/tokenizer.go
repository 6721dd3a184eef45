package qa

import (
	"fmt"
	"strings"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HFTokenizer wraps a Hugging Face tokenizer.json (WordPiece for the DistilBERT
// checkpoints) loaded through github.com/sugarme/tokenizer. Sequence length is
// capped by the engine, not by the library.
type HFTokenizer struct {
	tk      *tokenizer.Tokenizer
	special map[int]bool
}

var _ Tokenizer = (*HFTokenizer)(nil)

// LoadTokenizer reads a tokenizer.json file.
func LoadTokenizer(path string) (*HFTokenizer, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	t := &HFTokenizer{tk: tk}

	// The ids the post-processor inserts around a pair are the special ones.
	enc, err := t.EncodePair("a", "b")
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	t.special = make(map[int]bool)
	for i, id := range enc.IDs {
		if i < len(enc.SpecialTokensMask) && enc.SpecialTokensMask[i] == 1 {
			t.special[id] = true
		}
	}
	return t, nil
}

// EncodePair encodes "[CLS] question [SEP] context [SEP]".
func (t *HFTokenizer) EncodePair(question, context string) (enc Encoding, err error) {
	defer func() {
		if r := recover(); r != nil {
			enc, err = Encoding{}, fmt.Errorf("tokenizer panic: %v", r)
		}
	}()

	en, err := t.tk.EncodePair(question, context, true)
	if err != nil {
		return Encoding{}, err
	}
	return Encoding{
		IDs:               en.Ids,
		TypeIDs:           en.TypeIds,
		AttentionMask:     en.AttentionMask,
		SpecialTokensMask: en.SpecialTokenMask,
	}, nil
}

// Decode maps ids back to vocabulary tokens and joins them with WordPiece rules.
func (t *HFTokenizer) Decode(ids []int, skipSpecialTokens bool) string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		if skipSpecialTokens && t.special[id] {
			continue
		}
		tok, ok := t.tk.IdToToken(id)
		if !ok {
			continue
		}
		tokens = append(tokens, tok)
	}
	return joinWordPieces(tokens)
}

var tokenizationSpaces = strings.NewReplacer(
	" .", ".", " ?", "?", " !", "!", " ,", ",", " ' ", "'",
	" n't", "n't", " 'm", "'m", " 's", "'s", " 've", "'ve", " 're", "'re",
)

// joinWordPieces glues "##" continuations onto the previous token, separates
// words with a space and removes the space before punctuation and contractions.
func joinWordPieces(tokens []string) string {
	var sb strings.Builder
	for i, tok := range tokens {
		if i > 0 {
			if rest, ok := strings.CutPrefix(tok, "##"); ok {
				sb.WriteString(rest)
				continue
			}
			sb.WriteByte(' ')
		}
		sb.WriteString(tok)
	}
	return tokenizationSpaces.Replace(sb.String())
}
