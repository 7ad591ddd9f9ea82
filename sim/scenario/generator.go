package scenario

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queueing-sim/sim"
)

// generate is the arrival process. It samples the next gap before sleeping,
// so the first entity arrives one gap after time zero, and stops once the
// next arrival would fall after the horizon or MaxEntities have entered.
func (n *network) generate(p *sim.Process) error {
	for {
		if n.cfg.MaxEntities > 0 && n.spawned >= n.cfg.MaxEntities {
			logrus.Debugf("[t %12.4f] Arrivals stopped after %d entities", p.Now(), n.spawned)
			return nil
		}
		gap := n.sampler.SampleInterarrival()
		if n.cfg.Bounded() && p.Now()+gap > n.cfg.Horizon {
			logrus.Debugf("[t %12.4f] Arrivals stopped at horizon %.4f", p.Now(), n.cfg.Horizon)
			return nil
		}
		if err := p.Timeout(gap); err != nil {
			return err
		}

		n.spawned++
		e := &Entity{ID: n.spawned, EnteredAt: p.Now()}
		n.entities = append(n.entities, e)
		if _, err := p.Sim().Process(fmt.Sprintf("entity-%d", e.ID), n.lifecycle(e)); err != nil {
			return err
		}
	}
}
