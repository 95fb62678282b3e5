package enr

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "enr")
