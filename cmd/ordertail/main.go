// ordertail follows the live order stream of a running server and prints
// each event, the way kitchen staff would watch incoming orders from a
// terminal.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/tableside/pkg/models"
	"github.com/example/tableside/pkg/stream"
	"go.uber.org/zap"
)

func main() {
	url := flag.String("url", "http://localhost:8080/api/orders/stream", "order stream URL")
	bell := flag.Bool("bell", false, "ring the terminal bell on new orders")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	client := stream.NewClient(*url, func(evt models.OrderEvent) {
		if evt.Order == nil {
			return
		}
		switch evt.Type {
		case models.EventNewOrder:
			if *bell {
				fmt.Print("\a")
			}
			fmt.Printf("NEW    %s  %s  %.0f %s  (%d items)\n",
				evt.Order.OrderID, evt.Order.Customer.Name,
				evt.Order.Total, evt.Order.Currency, len(evt.Order.Items))
		case models.EventOrderUpdate:
			fmt.Printf("UPDATE %s  status=%s payment=%s\n",
				evt.Order.OrderID, evt.Order.OrderStatus, evt.Order.PaymentStatus)
		}
	}, logger)

	client.Start()
	defer client.Close()

	logger.Info("Following order stream", zap.String("url", *url))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("Stopped")
}
