// Package claims decodes the payload segment of a bearer token WITHOUT
// verifying its signature. The backend signs and validates its own tokens;
// this decode exists only so the client can learn the subject id when an
// endpoint hands back a token with no accompanying profile. It must never
// be used as an authorization check.
package claims

import (
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims is the subset of token payload fields the client cares about.
type Claims struct {
	Subject int64  // user id from the "sub" claim
	Role    string // optional "role" claim, empty when absent
}

// DecodeUntrusted parses the middle base64url segment of a three-part token
// into Claims. The signature is NOT checked.
func DecodeUntrusted(raw string) (Claims, error) {
	token, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, errors.Wrap(err, "[DecodeUntrusted] parse token")
	}

	mapClaims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, errors.New("[DecodeUntrusted] unexpected claims shape")
	}

	sub, err := subjectID(mapClaims["sub"])
	if err != nil {
		return Claims{}, err
	}

	role, _ := mapClaims["role"].(string)
	return Claims{Subject: sub, Role: role}, nil
}

// subjectID tolerates the "sub" claim arriving as a JSON number or as a
// numeric string, both of which the backend has emitted.
func subjectID(v any) (int64, error) {
	switch sub := v.(type) {
	case float64:
		return int64(sub), nil
	case string:
		id, err := strconv.ParseInt(sub, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "[DecodeUntrusted] non-numeric sub claim")
		}
		return id, nil
	case nil:
		return 0, errors.New("[DecodeUntrusted] missing sub claim")
	default:
		return 0, errors.Errorf("[DecodeUntrusted] unsupported sub claim type %T", v)
	}
}
