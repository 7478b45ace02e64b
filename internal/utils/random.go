package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var stashAdjectives = []string{
	"amber", "brisk", "dusty", "faded", "folded", "hidden", "idle", "quiet",
	"shelved", "sleepy", "spare", "tucked", "warm", "winter",
}

var stashNouns = []string{
	"attic", "basket", "box", "cellar", "chest", "crate", "drawer", "locker",
	"parcel", "pocket", "satchel", "shelf", "tin", "trunk",
}

// RandomStashName returns an adjective-noun name used when a stash is saved
// without an explicit name.
func RandomStashName() string {
	return fmt.Sprintf("%s-%s", pick(stashAdjectives), pick(stashNouns))
}

func pick(list []string) string {
	if len(list) == 0 {
		return ""
	}
	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(list))))
	if err != nil {
		return list[0]
	}
	return list[idx.Int64()]
}
