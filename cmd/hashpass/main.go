// hashpass печатает bcrypt-хеш пароля для ручного сброса в таблице users.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	applogger "admin-backoffice/pkg/logger"
	"admin-backoffice/pkg/utils"
)

func main() {
	fromStdin := flag.Bool("stdin", false, "Читать пароль из stdin, а не из аргумента")
	flag.Parse()

	logger := applogger.NewLogger("info", "")
	defer func() { _ = logger.Sync() }()

	var password string
	switch {
	case *fromStdin:
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			logger.Fatal("не удалось прочитать пароль", zap.Error(err))
		}
		password = strings.TrimRight(line, "\r\n")
	case flag.NArg() == 1:
		password = flag.Arg(0)
	default:
		fmt.Fprintln(os.Stderr, "использование: hashpass <пароль> | hashpass -stdin")
		os.Exit(2)
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		logger.Fatal("ошибка при генерации хеша", zap.Error(err))
	}
	fmt.Println(hashed)
}
