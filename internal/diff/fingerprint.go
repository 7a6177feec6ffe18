package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/veldtdb/veldt/internal/dialect"
	"github.com/veldtdb/veldt/internal/schema"
)

// partContent implements merkletree.Content for one table part
// (a column, index, or foreign key).
type partContent struct {
	hash string
}

func (c partContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(c.hash))
	return h[:], nil
}

func (c partContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(partContent)
	if !ok {
		return false, nil
	}
	return c.hash == o.hash, nil
}

// TableFingerprint computes a deterministic merkle root over a table's
// columns, indexes, and foreign keys. Equal fingerprints mean no
// migration is needed; the hash is also cheap to log and compare.
// A nil or empty table yields a fixed sentinel value.
func TableFingerprint(d dialect.Dialect, t *schema.TableDef) string {
	if t == nil || len(t.Columns) == 0 {
		return hashString("absent")
	}

	parts := make([]string, 0, len(t.Columns)+len(t.Indexes)+len(t.ForeignKeys)+1)

	for _, col := range t.Columns {
		parts = append(parts, fmt.Sprintf("column:%s|type:%s|nullable:%v",
			col.Name, d.ColumnTypeSQL(col), col.Nullable))
	}
	for _, idx := range t.Indexes {
		parts = append(parts, fmt.Sprintf("index:%s|columns:[%s]|unique:%v",
			idx.Name, strings.Join(idx.Columns, ","), idx.Unique))
	}
	// Foreign key names are excluded: engines that synthesize constraint
	// names would otherwise never fingerprint equal to the declared schema.
	for _, fk := range t.ForeignKeys {
		parts = append(parts, fmt.Sprintf("fk:[%s]|ref:%s(%s)|on_delete:%s|on_update:%s",
			strings.Join(fk.Columns, ","), fk.RefTable,
			strings.Join(fk.RefColumns, ","), fk.OnDelete, fk.OnUpdate))
	}
	parts = append(parts, "pk:["+strings.Join(t.PrimaryKey, ",")+"]")

	// Sorted so declaration order never changes the root.
	sort.Strings(parts)

	contents := make([]merkletree.Content, len(parts))
	for i, p := range parts {
		contents[i] = partContent{hash: p}
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		// NewTree only fails on empty input, which is handled above.
		return hashString(strings.Join(parts, "\n"))
	}
	return hex.EncodeToString(tree.MerkleRoot())
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
