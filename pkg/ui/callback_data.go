package ui

import (
	"errors"
	"strconv"
	"strings"
)

// Telegram caps callback data at 64 bytes; a uuid plus the longest prefix
// stays well under it.
const MaxCallbackDataLen = 64

const (
	DeckCallbackPrefix     = "d:"
	PracticeCallbackPrefix = "p:"
	TagCallbackPrefix      = "t:"
	CardCallbackPrefix     = "c:"
)

type DeckOp string

const (
	DeckOpSelect        DeckOp = "sel"
	DeckOpPractice      DeckOp = "prac"
	DeckOpNewCard       DeckOp = "card"
	DeckOpEdit          DeckOp = "edit"
	DeckOpDelete        DeckOp = "del"
	DeckOpDeleteConfirm DeckOp = "delok"
	DeckOpDeleteCancel  DeckOp = "delno"
	DeckOpTagFilter     DeckOp = "tag"
	DeckOpTagClear      DeckOp = "tagclear"
)

type DeckAction struct {
	Op DeckOp
	ID string // deck id, or tag id for the filter ops
}

type PracticeOp string

const (
	PracticeOpFlip PracticeOp = "flip"
	PracticeOpNext PracticeOp = "next"
	PracticeOpPrev PracticeOp = "prev"
	PracticeOpExit PracticeOp = "exit"
)

type TagOp string

const (
	TagOpNew    TagOp = "new" // value is a palette index
	TagOpDelete TagOp = "del" // value is a tag id
)

type TagAction struct {
	Op         TagOp
	TagID      string
	ColorIndex int
}

type CardOp string

const (
	CardOpEdit   CardOp = "edit"
	CardOpDelete CardOp = "del"
)

type CardAction struct {
	Op     CardOp
	CardID string
}

var (
	errInvalidPrefix       = errors.New("invalid callback prefix")
	errInvalidAction       = errors.New("invalid callback action")
	errInvalidValue        = errors.New("invalid callback value")
	errCallbackDataTooLong = errors.New("callback data too long")
)

func BuildDeckCallback(op DeckOp, id string) (string, error) {
	switch op {
	case DeckOpSelect, DeckOpPractice, DeckOpNewCard, DeckOpEdit, DeckOpDelete, DeckOpDeleteConfirm, DeckOpTagFilter:
		if id == "" {
			return "", errInvalidValue
		}
		return validateCallbackData(DeckCallbackPrefix + string(op) + ":" + id)
	case DeckOpDeleteCancel, DeckOpTagClear:
		return validateCallbackData(DeckCallbackPrefix + string(op))
	default:
		return "", errInvalidAction
	}
}

func ParseDeckCallback(data string) (DeckAction, error) {
	if len(data) > MaxCallbackDataLen {
		return DeckAction{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, DeckCallbackPrefix) {
		return DeckAction{}, errInvalidPrefix
	}
	parts := strings.SplitN(data, ":", 3)
	switch len(parts) {
	case 2:
		switch DeckOp(parts[1]) {
		case DeckOpDeleteCancel, DeckOpTagClear:
			return DeckAction{Op: DeckOp(parts[1])}, nil
		default:
			return DeckAction{}, errInvalidAction
		}
	case 3:
		op := DeckOp(parts[1])
		switch op {
		case DeckOpSelect, DeckOpPractice, DeckOpNewCard, DeckOpEdit, DeckOpDelete, DeckOpDeleteConfirm, DeckOpTagFilter:
			if parts[2] == "" {
				return DeckAction{}, errInvalidValue
			}
			return DeckAction{Op: op, ID: parts[2]}, nil
		default:
			return DeckAction{}, errInvalidAction
		}
	default:
		return DeckAction{}, errInvalidAction
	}
}

func BuildPracticeCallback(op PracticeOp) (string, error) {
	switch op {
	case PracticeOpFlip, PracticeOpNext, PracticeOpPrev, PracticeOpExit:
		return validateCallbackData(PracticeCallbackPrefix + string(op))
	default:
		return "", errInvalidAction
	}
}

func ParsePracticeCallback(data string) (PracticeOp, error) {
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, PracticeCallbackPrefix) {
		return "", errInvalidPrefix
	}
	op := PracticeOp(strings.TrimPrefix(data, PracticeCallbackPrefix))
	switch op {
	case PracticeOpFlip, PracticeOpNext, PracticeOpPrev, PracticeOpExit:
		return op, nil
	default:
		return "", errInvalidAction
	}
}

func BuildTagNewCallback(colorIndex int) (string, error) {
	if colorIndex < 0 {
		return "", errInvalidValue
	}
	return validateCallbackData(TagCallbackPrefix + string(TagOpNew) + ":" + strconv.Itoa(colorIndex))
}

func BuildTagDeleteCallback(tagID string) (string, error) {
	if tagID == "" {
		return "", errInvalidValue
	}
	return validateCallbackData(TagCallbackPrefix + string(TagOpDelete) + ":" + tagID)
}

func ParseTagCallback(data string) (TagAction, error) {
	if len(data) > MaxCallbackDataLen {
		return TagAction{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, TagCallbackPrefix) {
		return TagAction{}, errInvalidPrefix
	}
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return TagAction{}, errInvalidAction
	}
	switch TagOp(parts[1]) {
	case TagOpNew:
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 0 {
			return TagAction{}, errInvalidValue
		}
		return TagAction{Op: TagOpNew, ColorIndex: index}, nil
	case TagOpDelete:
		return TagAction{Op: TagOpDelete, TagID: parts[2]}, nil
	default:
		return TagAction{}, errInvalidAction
	}
}

func BuildCardCallback(op CardOp, cardID string) (string, error) {
	switch op {
	case CardOpEdit, CardOpDelete:
		if cardID == "" {
			return "", errInvalidValue
		}
		return validateCallbackData(CardCallbackPrefix + string(op) + ":" + cardID)
	default:
		return "", errInvalidAction
	}
}

func ParseCardCallback(data string) (CardAction, error) {
	if len(data) > MaxCallbackDataLen {
		return CardAction{}, errCallbackDataTooLong
	}
	if !strings.HasPrefix(data, CardCallbackPrefix) {
		return CardAction{}, errInvalidPrefix
	}
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[2] == "" {
		return CardAction{}, errInvalidAction
	}
	switch CardOp(parts[1]) {
	case CardOpEdit, CardOpDelete:
		return CardAction{Op: CardOp(parts[1]), CardID: parts[2]}, nil
	default:
		return CardAction{}, errInvalidAction
	}
}

func validateCallbackData(data string) (string, error) {
	if len(data) > MaxCallbackDataLen {
		return "", errCallbackDataTooLong
	}
	return data, nil
}
