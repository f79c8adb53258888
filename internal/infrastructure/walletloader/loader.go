package walletloader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"wallet_report/internal/app/port"
	"wallet_report/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// WalletFileLoader reads wallet addresses, one per line, for batch report runs.
// Blank lines and lines starting with '#' are ignored.
type WalletFileLoader struct {
	filePath string
	logger   port.Logger
}

// NewWalletFileLoader creates a new WalletFileLoader for the given file.
func NewWalletFileLoader(filePath string, logger port.Logger) *WalletFileLoader {
	return &WalletFileLoader{filePath: filePath, logger: logger}
}

// GetWallets reads the file and returns the addresses that are valid for netDef.
// EVM chains require a 0x-prefixed hex address; other chains accept any token.
func (l *WalletFileLoader) GetWallets(netDef entity.NetworkDefinition) ([]string, error) {
	file, err := os.Open(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet file %s: %w", l.filePath, err)
	}
	defer file.Close()

	wallets, err := l.parse(file, netDef)
	if err != nil {
		return nil, fmt.Errorf("error scanning wallet file %s: %w", l.filePath, err)
	}
	if l.logger != nil {
		l.logger.Info("Wallets loaded successfully from file", "count", len(wallets), "path", l.filePath, "network", netDef.Identifier)
	}
	return wallets, nil
}

func (l *WalletFileLoader) parse(r io.Reader, netDef entity.NetworkDefinition) ([]string, error) {
	seen := make(map[string]struct{})
	var wallets []string

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if netDef.IsEVM && !common.IsHexAddress(line) {
			if l.logger != nil {
				l.logger.Warn("Skipping invalid wallet address format", "file", l.filePath, "line_number", lineNum, "address", line)
			}
			continue
		}
		key := line
		if netDef.IsEVM {
			key = strings.ToLower(line)
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		wallets = append(wallets, line)
	}
	return wallets, scanner.Err()
}
