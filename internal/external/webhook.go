package external

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "ovation/internal/errors"
)

// Webhook signatures use the scheme
//
//	Signature: t=<unix seconds>,v1=<hex hmac-sha256>
//
// where the MAC is computed over "<t>.<raw payload>" with the shared
// webhook secret. The timestamp must fall within the tolerance window so a
// captured delivery cannot be replayed much later with a stale signature.

// VerifyWebhookSignature checks a webhook payload against its signature
// header. It fails closed: any parse failure, timestamp drift beyond the
// tolerance, or MAC mismatch yields ErrInvalidSignature.
func VerifyWebhookSignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	ts, macs, err := parseSignatureHeader(header)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidSignature, err)
	}

	drift := now.Sub(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if tolerance > 0 && drift > tolerance {
		return fmt.Errorf("%w: timestamp outside tolerance window", apperrors.ErrInvalidSignature)
	}

	expected := ComputeWebhookSignature(payload, secret, ts)
	for _, mac := range macs {
		decoded, err := hex.DecodeString(mac)
		if err != nil {
			continue
		}
		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return fmt.Errorf("%w: no matching signature", apperrors.ErrInvalidSignature)
}

// ComputeWebhookSignature returns the raw MAC for a payload at a timestamp.
// Exported so tests and local tooling can produce valid deliveries.
func ComputeWebhookSignature(payload []byte, secret string, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

// SignatureHeader renders a valid signature header for a payload, used by
// tests and the local webhook replay tooling.
func SignatureHeader(payload []byte, secret string, ts int64) string {
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(ComputeWebhookSignature(payload, secret, ts)))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, fmt.Errorf("empty signature header")
	}

	var ts int64
	var tsSeen bool
	var macs []string

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return 0, nil, fmt.Errorf("malformed signature part %q", part)
		}

		switch key {
		case "t":
			parsed, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("invalid timestamp %q", value)
			}
			ts = parsed
			tsSeen = true
		case "v1":
			macs = append(macs, value)
		}
	}

	if !tsSeen {
		return 0, nil, fmt.Errorf("missing timestamp")
	}
	if len(macs) == 0 {
		return 0, nil, fmt.Errorf("missing v1 signature")
	}

	return ts, macs, nil
}
