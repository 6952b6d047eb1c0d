// Package notify announces completed conversions via Pushover. The token
// and recipient list come from the environment; when either is missing the
// notification is skipped.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gregdel/pushover"
	"github.com/sirupsen/logrus"
)

var (
	token      = os.Getenv("SCANTEXT_PUSHOVER_TOKEN")
	recipients = os.Getenv("SCANTEXT_PUSHOVER_RECIPIENTS")
)

// Converted sends a notification that source was converted to the text file
// target.
func Converted(logger logrus.FieldLogger, source, target string) {
	log := logger.WithField("component", "notify")

	if token == "" {
		log.Warn("no pushover token found, skipping notification")

		return
	}

	if recipients == "" {
		log.Warn("no recipients found, skipping notification")

		return
	}

	app := pushover.New(token)

	message := pushover.NewMessageWithTitle(
		fmt.Sprintf("Converted %v to %v", filepath.Base(source), filepath.Base(target)),
		"scantext: conversion done",
	)

	for _, r := range strings.Split(recipients, ",") {
		recipient := pushover.NewRecipient(r)

		response, err := app.SendMessage(message, recipient)
		if err != nil {
			log.Warnf("unable to send message: %v", err)

			continue
		}

		log.Debugf("response from pushover: %v", response)
	}
}
