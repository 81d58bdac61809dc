package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	groupModel "hifzku_backend/internals/features/groups/groups/model"
)

// Alphabet: urutan label fauj. Order sebuah label = index + 1.
var Alphabet = []string{
	"أ", "ب", "ت", "ث", "ج", "ح", "خ", "د", "ذ", "ر", "ز", "س", "ش", "ص",
	"ض", "ط", "ظ", "ع", "غ", "ف", "ق", "ك", "ل", "م", "ن", "ه", "و", "ي",
}

const maxGroupNameLen = 60

// NormalizeName: trim + NFC, dipakai untuk simpan & banding nama.
func NormalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func validName(s string) bool {
	n := utf8.RuneCountInString(s)
	return n > 0 && n <= maxGroupNameLen
}

// NextFreeLabel: simbol alfabet pertama yang tidak dipakai fauj aktif.
// ok=false jika seluruh alfabet terpakai.
func NextFreeLabel(usedNames []string) (name string, order int, ok bool) {
	used := make(map[string]struct{}, len(usedNames))
	for _, n := range usedNames {
		used[NormalizeName(n)] = struct{}{}
	}
	for i, label := range Alphabet {
		if _, taken := used[NormalizeName(label)]; !taken {
			return label, i + 1, true
		}
	}
	return "", 0, false
}

// alphabetOrder: posisi label di alfabet (1-based), 0 jika bukan label alfabet.
func alphabetOrder(name string) int {
	n := NormalizeName(name)
	for i, label := range Alphabet {
		if NormalizeName(label) == n {
			return i + 1
		}
	}
	return 0
}

// orderFor: label alfabet → posisinya; nama custom → setelah seluruh alfabet
// (dan setelah fauj custom lain), supaya tidak pernah bentrok dengan label yang dipakai ulang.
func orderFor(name string, others []groupModel.GroupModel, except uuid.UUID) int {
	if o := alphabetOrder(name); o > 0 {
		return o
	}
	maxOrder := len(Alphabet)
	for _, g := range others {
		if g.GroupID != except && g.GroupOrder > maxOrder {
			maxOrder = g.GroupOrder
		}
	}
	return maxOrder + 1
}
