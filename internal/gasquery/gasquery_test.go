package gasquery_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skel-labs/skelbot/internal/gasquery"
)

func TestGasQuerySuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "GasQuery Suite")
}

var _ = Describe("Parse", func() {
	DescribeTable("resolves network and currency",
		func(args []string, network, currency string) {
			q := gasquery.Parse(args)
			Expect(q.Network).To(Equal(network))
			Expect(q.Currency).To(Equal(currency))
		},
		Entry("no arguments", []string{}, "ethereum", "USD"),
		Entry("nil arguments", []string(nil), "ethereum", "USD"),
		Entry("empty tokens only", []string{"", ""}, "ethereum", "USD"),
		Entry("single network alias", []string{"polygon"}, "plasma", "USD"),
		Entry("matic alias", []string{"matic"}, "plasma", "USD"),
		Entry("eth alias", []string{"eth"}, "ethereum", "USD"),
		Entry("bnb alias", []string{"bnb"}, "bsc", "USD"),
		Entry("full phrase beats prefix", []string{"binance", "smart", "chain"}, "bsc", "USD"),
		Entry("full phrase plus currency", []string{"binance", "smart", "chain", "idr"}, "bsc", "IDR"),
		Entry("phrase with trailing currency", []string{"polygon", "pos", "eur"}, "plasma", "EUR"),
		Entry("currency only", []string{"idr"}, "ethereum", "IDR"),
		Entry("network then currency", []string{"base", "usd"}, "base", "USD"),
		Entry("prefix match wins over suffix", []string{"bnb", "chain", "testnet3"}, "bsc", "USD"),
		Entry("trailing word can still be a currency", []string{"bnb", "chain", "extra"}, "bsc", "EXTRA"),
		Entry("suffix single-token fallback", []string{"fees", "on", "linea"}, "linea", "USD"),
		Entry("unknown tokens fall back", []string{"somechain", "xyzcoin123"}, "ethereum", "USD"),
		Entry("stopword is not a currency", []string{"binance", "chain"}, "bsc", "USD"),
		Entry("network keyword is not a currency", []string{"polygon", "matic"}, "plasma", "USD"),
		Entry("mixed case", []string{"Binance", "Smart", "Chain", "Idr"}, "bsc", "IDR"),
		Entry("numeric trailing token is no currency", []string{"base", "100"}, "base", "USD"),
		Entry("too-long trailing token is no currency", []string{"base", "rupiahs"}, "base", "USD"),
		Entry("one-letter trailing token is no currency", []string{"base", "x"}, "base", "USD"),
	)

	It("handles an ambiguous lone token by treating it as a currency", func() {
		// "gas" is alphabetic, length 3, and not a network word, so the
		// currency rule claims it; the network defaults.
		q := gasquery.Parse([]string{"gas"})
		Expect(q.Network).To(Equal("ethereum"))
		Expect(q.Currency).To(Equal("GAS"))
	})
})
