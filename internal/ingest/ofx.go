package ingest

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/credlens/credlens/internal/model"
)

// OFXParser converts OFX/QFX bank statements into ledger transactions.
type OFXParser struct{}

// NewOFXParser creates a new OFX statement parser.
func NewOFXParser() *OFXParser {
	return &OFXParser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *OFXParser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR).
	// SGML-style files carry the bare open-tag form, XML-style files the
	// closed form; both must be handled.
	severityRegex := regexp.MustCompile(`(?im)<SEVERITY>(Info|Warn|Error)(</SEVERITY>|\s*$)`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseStatement parses an OFX/QFX file into ledger transactions. Running
// balances are reconstructed backward from the statement ledger balance;
// when a statement carries none, balances stay at -1 and the balance
// aggregator skips them.
func (p *OFXParser) ParseStatement(reader io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++

		txns := make([]model.Transaction, 0, len(stmt.BankTranList.Transactions))
		for _, ofxTx := range stmt.BankTranList.Transactions {
			txns = append(txns, convertOFXTransaction(ofxTx))
		}

		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })

		ledgerBal, _ := stmt.BalAmt.Float64()
		reconstructBalances(txns, ledgerBal)

		transactions = append(transactions, txns...)
	}

	slog.Info("Parsed OFX statement",
		"total_transactions", len(transactions),
		"bank_statements", statements)

	return transactions, nil
}

// convertOFXTransaction maps one OFX transaction to a ledger entry. OFX uses
// negative amounts for debits.
func convertOFXTransaction(ofxTx ofxgo.Transaction) model.Transaction {
	amount, _ := ofxTx.TrnAmt.Float64()

	narration := strings.TrimSpace(string(ofxTx.Name))
	if memo := strings.TrimSpace(string(ofxTx.Memo)); memo != "" && memo != narration {
		narration = strings.TrimSpace(narration + " " + memo)
	}

	tx := model.Transaction{
		Date:      ofxTx.DtPosted.Time,
		Narration: narration,
		Balance:   -1,
	}
	if amount < 0 {
		tx.Debit = -amount
	} else {
		tx.Credit = amount
	}
	return tx
}

// reconstructBalances walks backward from the closing ledger balance.
// Each entry's balance is the running balance after that entry posted.
func reconstructBalances(txns []model.Transaction, closingBalance float64) {
	if len(txns) == 0 || closingBalance == 0 {
		return
	}

	balance := closingBalance
	for i := len(txns) - 1; i >= 0; i-- {
		txns[i].Balance = balance
		balance -= txns[i].Credit - txns[i].Debit
	}
}
