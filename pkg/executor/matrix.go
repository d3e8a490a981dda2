package executor

import (
	"strings"
)

// Markers that drop account types from a case's matrix.
const (
	MarkerNotDemo = "not_demo"
	MarkerNotLive = "not_live"
	MarkerNotCRM  = "not_crm"
)

// Account types and the client with a restricted matrix.
const (
	AccountDemo = "demo"
	AccountLive = "live"
	AccountCRM  = "crm"

	ClientTransactionCloud = "transactionCloud"
)

var excludedBy = map[string]string{
	MarkerNotDemo: AccountDemo,
	MarkerNotLive: AccountLive,
	MarkerNotCRM:  AccountCRM,
}

// Expand returns one case per server and account. A case that already names
// a server (or account) keeps it, and an empty list leaves that field as is.
// transactionCloud only runs on mt5 and has no crm accounts. The not_demo,
// not_live and not_crm markers remove their account type from a case; a
// case left with no account is dropped.
func Expand(cases []Case, servers, accounts []string, client string) []Case {
	servers, accounts = cleanList(servers), cleanList(accounts)
	byAccount := len(accounts) > 0
	if strings.EqualFold(client, ClientTransactionCloud) {
		servers = []string{"mt5"}
		accounts = without(accounts, map[string]bool{AccountCRM: true})
	}

	var out []Case
	for _, c := range cases {
		srvs := servers
		if c.Server != "" || len(srvs) == 0 {
			srvs = []string{c.Server}
		}
		accts := []string{c.Account}
		if c.Account == "" && byAccount {
			accts = without(accounts, c.excludedAccounts())
		}

		for _, s := range srvs {
			for _, a := range accts {
				e := c
				e.Server, e.Account = s, a
				out = append(out, e)
			}
		}
	}
	return out
}

func (c Case) excludedAccounts() map[string]bool {
	ex := map[string]bool{}
	for _, m := range c.Markers {
		if a, ok := excludedBy[m]; ok {
			ex[a] = true
		}
	}
	return ex
}

// SplitList parses a comma separated setting such as "mt4,mt5".
func SplitList(s string) []string {
	return cleanList(strings.Split(s, ","))
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func without(in []string, drop map[string]bool) []string {
	var out []string
	for _, v := range in {
		if !drop[v] {
			out = append(out, v)
		}
	}
	return out
}
