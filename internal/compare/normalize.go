package compare

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// isoMillis matches JavaScript's Date.toISOString.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Normalize renders a column value in the form both stores are compared in:
// nil as "null", integers and numerics in decimal, times as ISO-8601 UTC and
// everything trimmed and lower-cased. Normalize(Normalize(v)) == Normalize(v).
func Normalize(v any) string {
	return strings.ToLower(strings.TrimSpace(render(v)))
}

func render(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case *string:
		if x == nil {
			return "null"
		}
		return *x
	case []byte:
		if x == nil {
			return "null"
		}
		return "0x" + hex.EncodeToString(x)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case *big.Int:
		if x == nil {
			return "null"
		}
		return x.String()
	case big.Int:
		return x.String()
	case time.Time:
		return x.UTC().Format(isoMillis)
	case *time.Time:
		if x == nil {
			return "null"
		}
		return x.UTC().Format(isoMillis)
	case pgtype.Numeric:
		return numericString(x)
	case pgtype.Text:
		if !x.Valid {
			return "null"
		}
		return x.String
	case pgtype.Int8:
		if !x.Valid {
			return "null"
		}
		return strconv.FormatInt(x.Int64, 10)
	case pgtype.Timestamptz:
		if !x.Valid {
			return "null"
		}
		return x.Time.UTC().Format(isoMillis)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func numericString(n pgtype.Numeric) string {
	if !n.Valid {
		return "null"
	}
	if n.NaN {
		return "nan"
	}
	if n.InfinityModifier == pgtype.Infinity {
		return "infinity"
	}
	if n.InfinityModifier == pgtype.NegativeInfinity {
		return "-infinity"
	}
	if n.Int == nil {
		return "0"
	}
	if n.Exp >= 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n.Exp)), nil)
		return new(big.Int).Mul(n.Int, scale).String()
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(-n.Exp)), nil)
	text := new(big.Rat).SetFrac(n.Int, denom).FloatString(int(-n.Exp))
	text = strings.TrimRight(text, "0")
	return strings.TrimSuffix(text, ".")
}
