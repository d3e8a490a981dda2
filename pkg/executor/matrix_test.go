package executor

import (
	"context"
	"strings"
	"testing"
)

func combos(cases []Case) string {
	var out []string
	for _, c := range cases {
		out = append(out, c.Server+"/"+c.Account)
	}
	return strings.Join(out, ",")
}

func TestExpand(t *testing.T) {
	servers := []string{"mt4", " MT5 "}
	accounts := []string{"demo", "crm", "live"}

	tests := []struct {
		name     string
		c        Case
		servers  []string
		accounts []string
		client   string
		want     string
	}{
		{"full matrix", Case{}, servers, accounts, "lirunex",
			"mt4/demo,mt4/crm,mt4/live,mt5/demo,mt5/crm,mt5/live"},
		{"not_demo", Case{Markers: []string{MarkerNotDemo}}, servers, accounts, "lirunex",
			"mt4/crm,mt4/live,mt5/crm,mt5/live"},
		{"not_live and not_crm", Case{Markers: []string{MarkerNotLive, MarkerNotCRM}}, servers, accounts, "lirunex",
			"mt4/demo,mt5/demo"},
		{"transactionCloud", Case{}, servers, accounts, "transactionCloud",
			"mt5/demo,mt5/live"},
		{"transactionCloud without server list", Case{}, nil, []string{"demo"}, "transactioncloud",
			"mt5/demo"},
		{"fixed server and account", Case{Server: "mt4", Account: "live"}, servers, accounts, "lirunex",
			"mt4/live"},
		{"no matrix", Case{Server: "mt4"}, nil, nil, "lirunex", "mt4/"},
		{"all accounts excluded", Case{Markers: []string{MarkerNotDemo}}, servers, []string{"demo"}, "lirunex", ""},
		{"crm only on transactionCloud", Case{}, servers, []string{"crm"}, "transactionCloud", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand([]Case{tt.c}, tt.servers, tt.accounts, tt.client)
			if combos(got) != tt.want {
				t.Errorf("Expand() = %q, want %q", combos(got), tt.want)
			}
		})
	}
}

func TestExpand_KeepsCaseOrder(t *testing.T) {
	cases := []Case{{FullName: "a"}, {FullName: "b"}}
	got := Expand(cases, []string{"mt4"}, []string{"demo", "live"}, "")
	var names []string
	for _, c := range got {
		names = append(names, c.FullName)
	}
	if strings.Join(names, "") != "aabb" {
		t.Errorf("order = %v", names)
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(" mt4, MT5,,"); strings.Join(got, "|") != "mt4|mt5" {
		t.Errorf("SplitList = %q", got)
	}
	if got := SplitList(""); len(got) != 0 {
		t.Errorf("SplitList(\"\") = %q", got)
	}
}

func TestRun_ExpandsMatrix(t *testing.T) {
	f := newFixture(t, Options{Browser: "chrome", Servers: []string{"mt4", "mt5"}, Accounts: []string{"demo", "live"}})

	var seen []string
	c := Case{
		FullName: "tests.web.login.test_LGN_TC02#test_invalid_credentials",
		Package:  "login",
		Markers:  []string{MarkerNotLive},
		Fn: func(ctx context.Context, tc *TestContext) error {
			seen = append(seen, tc.Server+"/"+tc.Account)
			return nil
		},
	}
	res, err := f.runner.Run(context.Background(), []Case{c})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Total != 2 || res.Passed != 2 {
		t.Errorf("run result = %+v", res)
	}
	if strings.Join(seen, ",") != "mt4/demo,mt5/demo" {
		t.Errorf("ran %v", seen)
	}
}
