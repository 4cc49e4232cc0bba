package drude_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestDrude(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Drude Suite")
}
