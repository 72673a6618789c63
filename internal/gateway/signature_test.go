package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	const secret = "whsec_test"

	sig := Sign(secret, "order_abc", "pay_xyz")
	assert.True(t, VerifySignature(secret, "order_abc", "pay_xyz", sig))
}

func TestVerifySignature_Rejections(t *testing.T) {
	const secret = "whsec_test"
	sig := Sign(secret, "order_abc", "pay_xyz")

	assert.False(t, VerifySignature(secret, "order_abc", "pay_other", sig), "different payment id")
	assert.False(t, VerifySignature(secret, "order_other", "pay_xyz", sig), "different order id")
	assert.False(t, VerifySignature("whsec_wrong", "order_abc", "pay_xyz", sig), "different secret")
	assert.False(t, VerifySignature(secret, "order_abc", "pay_xyz", ""), "empty signature")
	assert.False(t, VerifySignature(secret, "order_abc", "pay_xyz", sig[:len(sig)-2]+"00"), "tampered signature")
}

func TestSign_Deterministic(t *testing.T) {
	assert.Equal(t,
		Sign("s", "o", "p"),
		Sign("s", "o", "p"),
	)
	assert.NotEqual(t, Sign("s", "o", "p"), Sign("s", "o|p", ""))
}
