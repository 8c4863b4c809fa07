package log

import "github.com/sirupsen/logrus"

// Request logs a handled request, what came back and any error. Errors are reported to the user separately.
func Request(log logrus.FieldLogger, eventName string, request interface{}, response interface{}, err error) {
	log = log.WithField("request", request)

	if err != nil {
		log = log.WithError(err)
	}
	if response != nil {
		log = log.WithField("response", response)
	}

	if err != nil {
		log.Info(eventName)
		return
	}
	log.Debug(eventName)
}
