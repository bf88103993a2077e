// Package document implements the attribute codec: a Document owns one
// externally-sourced host string and embeds single-character-keyed string
// attributes in it as delimiter+key+value tokens.
//
// It provides Exists/Get/Set/Delete access over those attributes, a
// last-access clock used for idle eviction, and leaves all text outside
// recognized tokens untouched.
package document
